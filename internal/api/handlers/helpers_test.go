package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/susp3kt93/myfleet-sub000/internal/api/middleware"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	testCompany = primitive.NewObjectID()
	adminActor  = models.Actor{UserID: primitive.NewObjectID(), CompanyID: testCompany, Role: models.RoleAdmin}
	driverActor = models.Actor{UserID: primitive.NewObjectID(), CompanyID: testCompany, Role: models.RoleDriver}
)

// newRouter returns a test engine that authenticates every request as actor.
// A zero actor leaves the request unauthenticated.
func newRouter(actor models.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if !actor.UserID.IsZero() {
			middleware.SetActor(c, actor)
		}
		c.Next()
	})
	return router
}

func perform(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			payload, _ := json.Marshal(b)
			reader = bytes.NewBuffer(payload)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
