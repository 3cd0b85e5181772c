// Package export flattens the JSON user store into a relational
// carbon_scores table, one row per usage entry. It exists for
// reporting setups that want the history queryable with SQL.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/ecospend/greentracker/internal/domain"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS carbon_scores (
	username     TEXT NOT NULL,
	timestamp    TEXT NOT NULL,
	carbon_score REAL NOT NULL,
	offset_cost  REAL NOT NULL
)`

// Run exports every usage entry in users into the carbon_scores table
// behind driver/dsn. Legacy credential-only records have no history
// and contribute no rows. The table is created if absent and all rows
// are inserted in a single transaction. Returns the row count.
func Run(ctx context.Context, users map[string]domain.UserRecord, driver, dsn string, logger zerolog.Logger) (int, error) {
	driverName, insertSQL, err := dialect(driver)
	if err != nil {
		return 0, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return 0, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	// Deterministic output order: usernames sorted, entries as appended.
	usernames := make([]string, 0, len(users))
	for name := range users {
		usernames = append(usernames, name)
	}
	sort.Strings(usernames)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	rows := 0
	for _, username := range usernames {
		for _, entry := range users[username].History {
			if _, err := stmt.ExecContext(ctx, username, entry.Timestamp, entry.CarbonScore, entry.OffsetCost); err != nil {
				return 0, fmt.Errorf("insert row for %q: %w", username, err)
			}
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	logger.Info().Int("rows", rows).Int("users", len(users)).Str("driver", driver).Msg("export completed")
	return rows, nil
}

// dialect maps the export driver name onto the registered sql driver
// and its placeholder style.
func dialect(driver string) (driverName, insertSQL string, err error) {
	switch driver {
	case DriverSQLite:
		return "sqlite",
			`INSERT INTO carbon_scores (username, timestamp, carbon_score, offset_cost) VALUES (?, ?, ?, ?)`,
			nil
	case DriverPostgres:
		return "pgx",
			`INSERT INTO carbon_scores (username, timestamp, carbon_score, offset_cost) VALUES ($1, $2, $3, $4)`,
			nil
	default:
		return "", "", fmt.Errorf("unsupported driver %q (want %q or %q)", driver, DriverSQLite, DriverPostgres)
	}
}
