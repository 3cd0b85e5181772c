package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a per-key token bucket held in process memory.
// Suitable for single-node deployments; buckets are not shared across
// instances or restarts.
type MemoryLimiter struct {
	rate  float64 // tokens added per second
	burst float64 // bucket capacity

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// NewMemoryLimiter creates a limiter refilling rate tokens per second
// with the given burst capacity.
func NewMemoryLimiter(rate float64, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		rate:    rate,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes one token for key if available.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{tokens: m.burst, lastFill: now}
		m.buckets[key] = b
	}

	// Refill on demand.
	elapsed := now.Sub(b.lastFill).Seconds()
	b.tokens += elapsed * m.rate
	if b.tokens > m.burst {
		b.tokens = m.burst
	}
	b.lastFill = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}
