package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecospend/greentracker/internal/domain"
	"github.com/ecospend/greentracker/internal/pkg/crypto"
	"github.com/ecospend/greentracker/internal/session"
	"github.com/ecospend/greentracker/internal/store"
)

func newAccountService(t *testing.T) (*AccountService, *store.FileStore, *session.Manager) {
	t.Helper()
	st := store.Open(filepath.Join(t.TempDir(), "users.json"), zerolog.Nop())
	sessions, err := session.NewManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewAccountService(st, sessions, zerolog.Nop()), st, sessions
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _, sessions := newAccountService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "correct horse"))

	token, err := svc.Authenticate(ctx, "alice", "correct horse")
	require.NoError(t, err)

	username, err := sessions.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestRegisterDuplicateUser(t *testing.T) {
	svc, st, _ := newAccountService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "correct horse"))
	err := svc.Register(ctx, "alice", "another password")
	require.ErrorIs(t, err, domain.ErrDuplicateUser)
	assert.Equal(t, 1, st.Len())
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAccountService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Register(ctx, "al", "long enough password"), ErrInvalidUsername)
	assert.ErrorIs(t, svc.Register(ctx, "alice", "short"), ErrInvalidPassword)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _, _ := newAccountService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "correct horse"))

	_, err := svc.Authenticate(ctx, "alice", "battery staple")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, _, _ := newAccountService(t)

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever!")
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestAuthenticateLegacyRecord(t *testing.T) {
	// A record written by an older deployment is a bare SHA-256 hex
	// string. It must still authenticate.
	path := filepath.Join(t.TempDir(), "users.json")
	legacy := map[string]string{"alice": crypto.HashPassword("correct horse")}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	st := store.Open(path, zerolog.Nop())
	sessions, err := session.NewManager("test-secret", time.Hour)
	require.NoError(t, err)
	svc := NewAccountService(st, sessions, zerolog.Nop())

	_, err = svc.Authenticate(context.Background(), "alice", "correct horse")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "alice", "wrong password")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
}
