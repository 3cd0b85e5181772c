// Package main is the entry point for the GreenTracker export tool.
// It flattens the JSON user store into a relational carbon_scores table
// for SQL reporting.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecospend/greentracker/internal/export"
	"github.com/ecospend/greentracker/internal/store"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	storePath := flag.String("store", "./data/users.json", "path to the JSON user store")
	driver := flag.String("driver", export.DriverSQLite, "target database driver (sqlite or postgres)")
	dsn := flag.String("dsn", "./data/carbon_scores.db", "target database DSN")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("GreenTracker Export Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		return
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.Open(*storePath, logger)
	if st.Len() == 0 {
		logger.Warn().Str("path", *storePath).Msg("user store is empty or missing")
	}

	rows, err := export.Run(ctx, st.Snapshot(), *driver, *dsn, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("export failed")
	}

	logger.Info().Int("rows", rows).Int("users", st.Len()).Msg("export finished")
}
