package ratelimit

import (
	"context"
	"time"
)

// RateLimiter counts requests per client and category in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, clientID, category string) (Decision, error)
	Limit(category string) RateLimit
	GetStats() RateLimiterStats
}

// RateLimit allows Requests per Window.
type RateLimit struct {
	Requests int           `json:"requests"`
	Window   time.Duration `json:"window"`
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// RateLimiterStats provides statistics about rate limiting
type RateLimiterStats struct {
	TotalRequests   int64 `json:"totalRequests"`
	BlockedRequests int64 `json:"blockedRequests"`
	ActiveClients   int   `json:"activeClients"`
}
