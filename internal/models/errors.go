package models

import "errors"

// Error taxonomy shared by services and the HTTP layer. Call sites wrap these
// with detail (fmt.Errorf("%w: ...", ErrX)) and callers match with errors.Is.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidMileage    = errors.New("invalid mileage")
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
)
