package domain

import "errors"

// Domain errors shared across the store and service layers.
var (
	// ErrDuplicateUser is returned when registering a username that
	// already exists. Registration never overwrites an existing record.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUnknownUser is returned when an operation targets a username
	// that is not in the store.
	ErrUnknownUser = errors.New("user not found")

	// ErrWrongPassword is returned when a password does not match the
	// stored credential.
	ErrWrongPassword = errors.New("wrong password")

	// ErrNotAuthenticated is returned when an operation that requires a
	// session is attempted without one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrStorageUnavailable is returned when the durable store cannot
	// be written. It is surfaced to the caller, never swallowed, since
	// data would otherwise be silently lost.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
