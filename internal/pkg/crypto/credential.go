// Package crypto provides credential hashing utilities for GreenTracker.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the SHA-256 hex digest of a password. This is
// the credential format stored for every user; existing stores hold
// digests in exactly this encoding, so the scheme must not change
// without a migration.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to credential.
// The comparison is constant-time.
func VerifyPassword(credential, password string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(credential), []byte(computed)) == 1
}
