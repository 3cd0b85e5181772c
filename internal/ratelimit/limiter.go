// Package ratelimit provides per-client token-bucket rate limiting
// with interchangeable backends: Redis for multi-instance deployments,
// in-memory for single-node ones, and a no-op when limiting is off.
package ratelimit

import "context"

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	// Allow consumes one token for key if available. A nil error with
	// allowed=false means the client is over its limit.
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// NoopLimiter allows everything. Used when rate limiting is disabled.
type NoopLimiter struct{}

// Allow always permits the request.
func (NoopLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
