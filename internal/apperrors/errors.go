// Package apperrors defines the error types shared across the service.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned when credentials are missing or invalid.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError indicates a request field failed validation. The caller
// surfaces the message and must not persist anything.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a field-scoped validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ComputationError indicates a bounded numeric computation did not converge.
// Callers log it and fall back to the unadjusted value.
type ComputationError struct {
	Op     string
	Detail string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation %s failed: %s", e.Op, e.Detail)
}

// NewComputationError creates a ComputationError for the given operation.
func NewComputationError(op, detail string) *ComputationError {
	return &ComputationError{Op: op, Detail: detail}
}
