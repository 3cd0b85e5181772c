package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ecospend/greentracker/internal/domain"
	"github.com/ecospend/greentracker/internal/pkg/crypto"
	"github.com/ecospend/greentracker/internal/session"
	"github.com/ecospend/greentracker/internal/store"
)

// AccountService handles registration and authentication.
type AccountService struct {
	store    *store.FileStore
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(st *store.FileStore, sessions *session.Manager, logger zerolog.Logger) *AccountService {
	return &AccountService{
		store:    st,
		sessions: sessions,
		logger:   logger.With().Str("service", "account").Logger(),
	}
}

// Register creates a new user. The password is hashed before storage;
// the plaintext never reaches the store. Fails with
// domain.ErrDuplicateUser if the username is taken, without mutation.
func (s *AccountService) Register(ctx context.Context, username, password string) error {
	if len(username) < 3 || len(username) > 255 {
		return ErrInvalidUsername
	}
	if len(password) < 8 {
		return ErrInvalidPassword
	}

	credential := crypto.HashPassword(password)
	if err := s.store.Register(username, credential); err != nil {
		return err
	}

	s.logger.Info().Str("username", username).Msg("user registered")
	return nil
}

// Authenticate verifies a username/password pair and, on success,
// returns a session token bound to the username.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (string, error) {
	credential, err := s.store.Credential(username)
	if err != nil {
		s.logger.Debug().Str("username", username).Msg("unknown user during authentication")
		return "", err
	}

	if !crypto.VerifyPassword(credential, password) {
		s.logger.Debug().Str("username", username).Msg("wrong password during authentication")
		return "", fmt.Errorf("%w: %q", domain.ErrWrongPassword, username)
	}

	token, err := s.sessions.Issue(username)
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("username", username).Msg("user authenticated")
	return token, nil
}
