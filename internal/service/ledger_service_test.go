package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecospend/greentracker/internal/domain"
	"github.com/ecospend/greentracker/internal/store"
)

func TestLedgerAppendUsesOwnClock(t *testing.T) {
	st := store.Open(filepath.Join(t.TempDir(), "users.json"), zerolog.Nop())
	require.NoError(t, st.Register("alice", "somehash"))

	svc := NewLedgerService(st, zerolog.Nop())
	fixed := time.Date(2025, 2, 8, 14, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	entry, err := svc.Append(context.Background(), "alice", 3.5, 0.35)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-08 14:30:00", entry.Timestamp)
	assert.Equal(t, fixed, entry.Time())
}

func TestLedgerAppendUnknownUser(t *testing.T) {
	st := store.Open(filepath.Join(t.TempDir(), "users.json"), zerolog.Nop())
	svc := NewLedgerService(st, zerolog.Nop())

	_, err := svc.Append(context.Background(), "ghost", 1, 1)
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestLedgerHistoryOrder(t *testing.T) {
	st := store.Open(filepath.Join(t.TempDir(), "users.json"), zerolog.Nop())
	require.NoError(t, st.Register("alice", "somehash"))
	svc := NewLedgerService(st, zerolog.Nop())

	for i := 1; i <= 3; i++ {
		_, err := svc.Append(context.Background(), "alice", float64(i), float64(i)/10)
		require.NoError(t, err)
	}

	history, err := svc.History(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 1.0, history[0].CarbonScore)
	assert.Equal(t, 3.0, history[2].CarbonScore)
}
