package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a token bucket whose state lives in Redis, shared
// across instances. The refill-and-take step runs as a single Lua
// script so concurrent instances cannot race on the bucket state.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	rate   float64
	burst  int
	ttl    time.Duration
	prefix string
}

const tokenBucketScript = `
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_fill_ms')
local tokens = tonumber(state[1])
local last_fill = tonumber(state[2])

if tokens == nil or last_fill == nil then
    tokens = burst
    last_fill = now_ms
end

local elapsed = math.max(0, now_ms - last_fill)
tokens = math.min(burst, tokens + (elapsed / 1000.0) * rate)

local allowed = 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
end

redis.call('HMSET', key, 'tokens', tokens, 'last_fill_ms', now_ms)
redis.call('EXPIRE', key, ttl_seconds)

return allowed
`

// NewRedisLimiter creates a limiter backed by the given Redis client.
func NewRedisLimiter(client *redis.Client, rate float64, burst int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(tokenBucketScript),
		rate:   rate,
		burst:  burst,
		ttl:    10 * time.Minute,
		prefix: "greentracker:ratelimit:",
	}
}

// Allow consumes one token for key if available. Redis errors are
// returned to the caller, which decides whether to fail open.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	res, err := r.script.Run(ctx, r.client, []string{r.prefix + key},
		time.Now().UnixMilli(),
		r.rate,
		r.burst,
		int64(r.ttl/time.Second),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("ratelimit script: %w", err)
	}
	return res == 1, nil
}
