package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/pkg/ratelimit"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
)

// RateLimitMiddleware limits requests per user, or per client IP before
// authentication, in the category the route maps to. Limiter failures let
// the request through.
func RateLimitMiddleware(limiter ratelimit.RateLimiter, config *ratelimit.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		category := config.Category(c.Request.Method, route)

		decision, err := limiter.Allow(c.Request.Context(), clientID(c), category)
		if err != nil {
			log.WithError(err).WithField("category", category).Warn("Rate limiter unavailable")
			c.Header("X-RateLimit-Error", "Rate limiter unavailable")
			c.Next()
			return
		}

		limit := limiter.Limit(category)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(decision.ResetIn).Unix(), 10))

		if !decision.Allowed {
			retry := int(decision.ResetIn.Round(time.Second).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.APIResponse{
				Success: false,
				Message: fmt.Sprintf("Too many requests. Try again in %ds", retry),
				Code:    "RATE_LIMIT_EXCEEDED",
			})
			return
		}
		c.Next()
	}
}

func clientID(c *gin.Context) string {
	if actor, ok := ActorFrom(c); ok {
		return "user:" + actor.UserID.Hex()
	}
	return "ip:" + c.ClientIP()
}
