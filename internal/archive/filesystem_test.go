package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemStore(t *testing.T) {
	dir := t.TempDir()
	a := NewFilesystem(dir, zerolog.Nop())

	key, err := a.Store(context.Background(), "alice", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "receipts/alice/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestFilesystemStoreJPEGExtension(t *testing.T) {
	a := NewFilesystem(t.TempDir(), zerolog.Nop())

	key, err := a.Store(context.Background(), "bob", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}

func TestNoopStore(t *testing.T) {
	key, err := Noop{}.Store(context.Background(), "alice", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Empty(t, key)
}
