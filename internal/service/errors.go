// Package service provides the business logic for GreenTracker:
// account management, the usage-history ledger, and receipt analysis.
package service

import "errors"

// Validation errors surfaced by the account service.
var (
	ErrInvalidUsername = errors.New("invalid username: must be 3-255 characters")
	ErrInvalidPassword = errors.New("invalid password: must be at least 8 characters")
)
