package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterBurst(t *testing.T) {
	// Practically no refill within the test window.
	l := NewMemoryLimiter(0.0001, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, ok, "bucket exhausted")

	// Another key has its own bucket.
	ok, err = l.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNoopLimiter(t *testing.T) {
	var l Limiter = NoopLimiter{}
	for i := 0; i < 100; i++ {
		ok, err := l.Allow(context.Background(), "anyone")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
