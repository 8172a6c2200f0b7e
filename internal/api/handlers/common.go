package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/susp3kt93/myfleet-sub000/internal/api/middleware"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
)

// currentActor returns the authenticated actor or writes 401.
func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
	}
	return actor, ok
}

// bindJSON decodes the body into req or writes 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return false
	}
	return true
}

// queryList accepts both repeated (?status=a&status=b) and comma separated
// (?status=a,b) forms.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
