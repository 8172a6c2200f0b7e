package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/susp3kt93/myfleet-sub000/pkg/redis"
)

func TestHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	fixed := func() time.Time { return time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC) }
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("server selection timeout") }

	tests := []struct {
		name   string
		mongo  Pinger
		redis  RedisHealth
		status int
		state  string
	}{
		{"all up", ok, redisClient, http.StatusOK, "healthy"},
		{"redis missing", ok, nil, http.StatusOK, "healthy"},
		{"mongo down", down, redisClient, http.StatusServiceUnavailable, "unhealthy"},
		{"mongo not configured", nil, redisClient, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(adminActor)
			router.GET("/health", NewHealthHandler(tt.mongo, tt.redis, fixed).HealthCheck)

			w := perform(router, http.MethodGet, "/health", nil)

			assertStatus(t, w, tt.status)
			assert.Contains(t, w.Body.String(), `"status":"`+tt.state+`"`)
			assert.Contains(t, w.Body.String(), `"mongodb"`)
		})
	}
}
