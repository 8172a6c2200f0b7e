package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindow increments the counter for the current window and reports
// whether the request fits, the remaining budget and the window's TTL in ms.
var fixedWindow = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local count = redis.call('INCR', key)
if count == 1 then
	redis.call('PEXPIRE', key, window)
end
local ttl = redis.call('PTTL', key)
if ttl < 0 then
	redis.call('PEXPIRE', key, window)
	ttl = window
end

local allowed = 0
if count <= limit then
	allowed = 1
end
local remaining = limit - count
if remaining < 0 then
	remaining = 0
end
return {allowed, remaining, ttl}
`)

// RedisRateLimiter implements RateLimiter on Redis so limits hold across
// instances.
type RedisRateLimiter struct {
	client  *redis.Client
	config  *Config
	total   int64
	blocked int64
}

func NewRedisRateLimiter(client *redis.Client, config *Config) *RedisRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &RedisRateLimiter{client: client, config: config}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, clientID, category string) (Decision, error) {
	limit := r.config.Limit(category)
	if !r.config.Enabled {
		return Decision{Allowed: true, Remaining: limit.Requests}, nil
	}
	atomic.AddInt64(&r.total, 1)

	key := fmt.Sprintf("%s%s:%s", r.config.KeyPrefix, category, clientID)
	res, err := fixedWindow.Run(ctx, r.client, []string{key}, limit.Requests, limit.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("unexpected script result %v", res)
	}

	d := Decision{
		Allowed:   res[0] == 1,
		Remaining: int(res[1]),
		ResetIn:   time.Duration(res[2]) * time.Millisecond,
	}
	if !d.Allowed {
		atomic.AddInt64(&r.blocked, 1)
	}
	return d, nil
}

func (r *RedisRateLimiter) Limit(category string) RateLimit {
	return r.config.Limit(category)
}

func (r *RedisRateLimiter) GetStats() RateLimiterStats {
	return RateLimiterStats{
		TotalRequests:   atomic.LoadInt64(&r.total),
		BlockedRequests: atomic.LoadInt64(&r.blocked),
	}
}
