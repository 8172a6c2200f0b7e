package ratelimit

import (
	"strings"
	"time"
)

// Config holds the configuration for rate limiting
type Config struct {
	// Limits per category. "default" applies when nothing else matches.
	Limits map[string]RateLimit `json:"limits"`

	// Routes maps "METHOD:/route/template" prefixes to categories.
	Routes map[string]string `json:"routes"`

	KeyPrefix string `json:"keyPrefix"`
	Enabled   bool   `json:"enabled"`
}

// DefaultConfig returns a default rate limiting configuration
func DefaultConfig() *Config {
	return &Config{
		Limits: map[string]RateLimit{
			"tasks_write": {Requests: 120, Window: time.Minute},
			// batch creation fans out into many inserts
			"recurring": {Requests: 10, Window: time.Minute},
			"timeoff":   {Requests: 60, Window: time.Minute},
			"vehicles":  {Requests: 100, Window: time.Minute},
			"reports":   {Requests: 30, Window: time.Minute},
			"exports":   {Requests: 10, Window: time.Minute},
			"health":    {Requests: 1000, Window: time.Minute},
			"default":   {Requests: 300, Window: time.Minute},
		},
		Routes: map[string]string{
			"POST:/api/v1/tasks/recurring": "recurring",
			"POST:/api/v1/tasks":           "tasks_write",
			"PUT:/api/v1/tasks":            "tasks_write",
			"DELETE:/api/v1/tasks":         "tasks_write",
			"POST:/api/v1/timeoff":         "timeoff",
			"PUT:/api/v1/timeoff":          "timeoff",
			"POST:/api/v1/vehicles":        "vehicles",
			"PUT:/api/v1/vehicles":         "vehicles",
			"GET:/api/v1/reports/export":   "exports",
			"GET:/api/v1/reports":          "reports",
			"GET:/health":                  "health",
		},
		KeyPrefix: "ratelimit:",
		Enabled:   true,
	}
}

// Category maps a request to its limit category. The longest matching route
// prefix wins.
func (c *Config) Category(method, route string) string {
	key := method + ":" + route
	best, category := 0, "default"
	for prefix, cat := range c.Routes {
		if len(prefix) > best && strings.HasPrefix(key, prefix) {
			best, category = len(prefix), cat
		}
	}
	return category
}

// Limit returns the limit for category, falling back to "default".
func (c *Config) Limit(category string) RateLimit {
	if l, ok := c.Limits[category]; ok {
		return l
	}
	if l, ok := c.Limits["default"]; ok {
		return l
	}
	return RateLimit{Requests: 60, Window: time.Minute}
}
