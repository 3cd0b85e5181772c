package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Filesystem archives receipts under a local data directory.
type Filesystem struct {
	dir    string
	logger zerolog.Logger
}

// NewFilesystem creates a filesystem archiver rooted at dir.
func NewFilesystem(dir string, logger zerolog.Logger) *Filesystem {
	return &Filesystem{
		dir:    dir,
		logger: logger.With().Str("component", "archive").Str("backend", "filesystem").Logger(),
	}
}

// Store writes the image under a date-partitioned path inside the
// data directory and returns the relative key.
func (f *Filesystem) Store(ctx context.Context, username string, image []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey(username, mimeType, time.Now())
	path := filepath.Join(f.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("archive mkdir: %w", err)
	}
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", fmt.Errorf("archive write: %w", err)
	}

	f.logger.Debug().Str("key", key).Int("bytes", len(image)).Msg("receipt archived")
	return key, nil
}
