package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/jwt"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
)

const actorKey = "actor"

// AuthMiddleware validates the bearer token and stores the acting user on the
// context. The websocket endpoint may pass the token as ?token= instead.
func AuthMiddleware(jwtUtil *jwt.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			log.WithError(err).WithField("path", c.Request.URL.Path).Debug("Token rejected")
			unauthorized(c, "Invalid or expired token")
			return
		}
		actor, err := claims.Actor()
		if err != nil {
			log.WithError(err).Warn("Token carries malformed claims")
			unauthorized(c, "Invalid token claims")
			return
		}

		c.Set(actorKey, actor)
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		// Accept both "Bearer <token>" and a bare token.
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.APIResponse{
		Success: false,
		Message: message,
		Code:    "UNAUTHORIZED",
	})
}

// SetActor stores actor on the context. Used by tests and internal callers.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}

// ActorFrom returns the actor set by AuthMiddleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
