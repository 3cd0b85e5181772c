// Package archive retains uploaded receipt images. Backends: local
// filesystem, S3-compatible object storage, or none. Archiving is best
// effort; a failed archive never fails the upload that triggered it.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Archiver stores a copy of an uploaded receipt image and returns the
// key it was stored under.
type Archiver interface {
	Store(ctx context.Context, username string, image []byte, mimeType string) (key string, err error)
}

// Noop discards everything. Used when archiving is disabled.
type Noop struct{}

// Store does nothing and returns an empty key.
func (Noop) Store(ctx context.Context, username string, image []byte, mimeType string) (string, error) {
	return "", nil
}

// objectKey builds a per-user, date-partitioned key for a receipt.
func objectKey(username, mimeType string, now time.Time) string {
	ext := ".bin"
	switch mimeType {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	}
	return fmt.Sprintf("receipts/%s/%04d/%02d/%02d/%s%s",
		username, now.Year(), now.Month(), now.Day(), uuid.NewString(), ext)
}
