package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	response := APIResponse{
		Success: false,
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(statusCode, response)
}

// ValidationErrorResponse sends a validation error response
func ValidationErrorResponse(c *gin.Context, err error) {
	var messages []string

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			messages = append(messages, getValidationErrorMessage(fieldError))
		}
	} else {
		messages = append(messages, err.Error())
	}

	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Message: "Validation failed",
		Error:   messages,
		Code:    "VALIDATION_ERROR",
	})
}

// ErrorKind maps a domain error to its HTTP status and stable code.
func ErrorKind(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, models.ErrInvalidMileage):
		return http.StatusUnprocessableEntity, "INVALID_MILEAGE"
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden, "PERMISSION_DENIED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// HandleServiceError writes the response for an error returned by a service.
// Unclassified errors are logged and hidden from the client.
func HandleServiceError(c *gin.Context, err error) {
	status, code := ErrorKind(err)
	response := APIResponse{Success: false, Code: code}
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		response.Message = "Internal server error"
	} else {
		response.Message = http.StatusText(status)
		response.Error = err.Error()
	}
	c.JSON(status, response)
}

// getValidationErrorMessage returns a user-friendly validation error message
func getValidationErrorMessage(fieldError validator.FieldError) string {
	field := fieldError.Field()

	switch fieldError.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fieldError.Param()
	case "max":
		return field + " must be at most " + fieldError.Param()
	case "gt":
		return field + " must be greater than " + fieldError.Param()
	case "oneof":
		return field + " must be one of: " + fieldError.Param()
	case "datetime":
		return field + " must match the format " + fieldError.Param()
	case "mongodb":
		return field + " must be a valid id"
	default:
		return field + " is invalid"
	}
}
