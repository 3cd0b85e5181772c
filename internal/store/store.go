// Package store implements the durable user store for GreenTracker:
// a single JSON document mapping username to credential and usage
// history, rewritten as a whole on every mutation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecospend/greentracker/internal/domain"
)

// FileStore is a JSON-file-backed user store. It owns an in-memory
// snapshot guarded by a mutex, which is the single serialization point
// for all mutations: concurrent callers within one process cannot race
// on the read-modify-write cycle.
//
// The durable copy is rewritten in full on every mutation. Writes go to
// a temp file in the same directory followed by a rename, so a reader
// never observes a half-written file.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu    sync.Mutex
	users map[string]domain.UserRecord
}

// Open loads the store at path. A missing, unreadable, or corrupt file
// yields an empty store rather than an error: no file means no users
// yet. Decoding problems are logged so a truncated file does not go
// unnoticed.
func Open(path string, logger zerolog.Logger) *FileStore {
	s := &FileStore{
		path:   path,
		logger: logger.With().Str("component", "store").Logger(),
		users:  make(map[string]domain.UserRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", path).Msg("store unreadable, starting empty")
		}
		return s
	}

	var users map[string]domain.UserRecord
	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("store corrupt, starting empty")
		return s
	}
	if users != nil {
		s.users = users
	}

	s.logger.Info().Str("path", path).Int("users", len(s.users)).Msg("store loaded")
	return s
}

// Register inserts a new user with the given credential and an empty
// history, and persists the store. Returns domain.ErrDuplicateUser
// without mutating anything if the username is taken.
func (s *FileStore) Register(username, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateUser, username)
	}

	s.users[username] = domain.UserRecord{Credential: credential, History: []domain.UsageEntry{}}
	if err := s.save(); err != nil {
		delete(s.users, username)
		return err
	}
	return nil
}

// Credential returns the stored credential for username, or
// domain.ErrUnknownUser.
func (s *FileStore) Credential(username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.users[username]
	if !exists {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownUser, username)
	}
	return rec.Credential, nil
}

// AppendEntry appends a usage entry to username's history and persists
// the store. Legacy credential-only records are upgraded to the full
// shape first, preserving the credential. The append is all-or-nothing:
// if the durable write fails, the in-memory history is rolled back and
// domain.ErrStorageUnavailable is returned.
func (s *FileStore) AppendEntry(username string, entry domain.UsageEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.users[username]
	if !exists {
		return fmt.Errorf("%w: %q", domain.ErrUnknownUser, username)
	}

	prev := rec.Clone()
	if rec.History == nil {
		// Legacy shape: upgrade in place. Idempotent and lossless.
		rec.History = []domain.UsageEntry{}
	}
	rec.History = append(rec.History, entry)
	s.users[username] = rec

	if err := s.save(); err != nil {
		s.users[username] = prev
		return err
	}
	return nil
}

// HistoryFor returns username's usage entries in append order. The
// returned slice is a copy.
func (s *FileStore) HistoryFor(username string) ([]domain.UsageEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.users[username]
	if !exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownUser, username)
	}
	out := make([]domain.UsageEntry, len(rec.History))
	copy(out, rec.History)
	return out, nil
}

// Snapshot returns a deep copy of every record, keyed by username.
// Used by the export tool.
func (s *FileStore) Snapshot() map[string]domain.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.UserRecord, len(s.users))
	for name, rec := range s.users {
		out[name] = rec.Clone()
	}
	return out
}

// Len returns the number of registered users.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// save serializes the whole store and replaces the durable copy.
// Callers must hold s.mu. Failures wrap domain.ErrStorageUnavailable.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.users, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", domain.ErrStorageUnavailable, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
