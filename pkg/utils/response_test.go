package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
)

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{fmt.Errorf("%w: cannot cancel a PENDING task", models.ErrInvalidTransition), http.StatusConflict, "INVALID_TRANSITION", "Conflict"},
		{fmt.Errorf("%w: 10 is below current mileage 20", models.ErrInvalidMileage), http.StatusUnprocessableEntity, "INVALID_MILEAGE", "Unprocessable Entity"},
		{fmt.Errorf("%w: title failed on required", models.ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR", "Bad Request"},
		{fmt.Errorf("%w: task 1", models.ErrNotFound), http.StatusNotFound, "NOT_FOUND", "Not Found"},
		{models.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED", "Forbidden"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleServiceError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
			if tt.status == http.StatusInternalServerError {
				assert.Nil(t, body.Error)
			} else {
				assert.Equal(t, tt.err.Error(), body.Error)
			}
		})
	}
}
