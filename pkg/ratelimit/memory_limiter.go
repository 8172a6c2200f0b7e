package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold is the bucket count above which expired windows are pruned.
const sweepThreshold = 10000

type window struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimiter implements RateLimiter in process memory. Used when Redis
// is not configured.
type MemoryRateLimiter struct {
	config  *Config
	now     func() time.Time
	mu      sync.Mutex
	windows map[string]*window
	stats   RateLimiterStats
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &MemoryRateLimiter{
		config:  config,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (m *MemoryRateLimiter) Allow(_ context.Context, clientID, category string) (Decision, error) {
	limit := m.config.Limit(category)
	if !m.config.Enabled {
		return Decision{Allowed: true, Remaining: limit.Requests}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.TotalRequests++

	now := m.now()
	if len(m.windows) > sweepThreshold {
		m.sweep(now)
	}

	key := category + ":" + clientID
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(limit.Window)}
		m.windows[key] = w
	}
	w.count++

	d := Decision{
		Allowed:   w.count <= limit.Requests,
		Remaining: max(0, limit.Requests-w.count),
		ResetIn:   w.resetAt.Sub(now),
	}
	if !d.Allowed {
		m.stats.BlockedRequests++
	}
	return d, nil
}

func (m *MemoryRateLimiter) sweep(now time.Time) {
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
		}
	}
}

func (m *MemoryRateLimiter) Limit(category string) RateLimit {
	return m.config.Limit(category)
}

func (m *MemoryRateLimiter) GetStats() RateLimiterStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.stats
	stats.ActiveClients = len(m.windows)
	return stats
}
