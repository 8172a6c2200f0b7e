package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/susp3kt93/myfleet-sub000/pkg/redis"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// RedisHealth is the subset of pkg/redis.Client used by the health check.
type RedisHealth interface {
	HealthCheck(ctx context.Context) redis.HealthStatus
	GetConnectionStats() map[string]interface{}
}

type HealthHandler struct {
	pingMongo   Pinger
	redisClient RedisHealth
	now         func() time.Time
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
}

// NewHealthHandler builds the handler. redisClient may be nil when the
// deployment runs without Redis; it is then reported but not required.
func NewHealthHandler(pingMongo Pinger, redisClient RedisHealth, now func() time.Time) *HealthHandler {
	if now == nil {
		now = time.Now
	}
	return &HealthHandler{pingMongo: pingMongo, redisClient: redisClient, now: now}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Timestamp: h.now(),
		Services:  make(map[string]interface{}),
	}

	mongoStatus := h.checkMongoDB(c.Request.Context())
	response.Services["mongodb"] = mongoStatus
	response.Services["redis"] = h.checkRedis(c.Request.Context())

	// Redis only backs caching, rate limiting and fan-out, so the service
	// stays usable without it.
	if mongoStatus["healthy"].(bool) {
		response.Status = "healthy"
		c.JSON(http.StatusOK, response)
		return
	}
	response.Status = "unhealthy"
	c.JSON(http.StatusServiceUnavailable, response)
}

func (h *HealthHandler) checkMongoDB(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service": "mongodb",
		"healthy": false,
	}
	if h.pingMongo == nil {
		status["error"] = "Database client not initialized"
		return status
	}
	if err := h.pingMongo(ctx); err != nil {
		status["error"] = err.Error()
		return status
	}
	status["healthy"] = true
	status["message"] = "Connected"
	return status
}

func (h *HealthHandler) checkRedis(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service": "redis",
		"healthy": false,
	}
	if h.redisClient == nil {
		status["error"] = "Redis client not initialized"
		return status
	}

	health := h.redisClient.HealthCheck(ctx)
	status["healthy"] = health.IsConnected
	status["connectionInfo"] = health.ConnectionInfo
	status["responseTime"] = health.ResponseTime.String()
	status["lastPing"] = health.LastPing
	if health.Error != "" {
		status["error"] = health.Error
	}
	status["connectionStats"] = h.redisClient.GetConnectionStats()
	return status
}
