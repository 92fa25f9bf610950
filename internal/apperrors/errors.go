package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found
// or does not belong to the caller.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// It is raised before any storage access.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that a uniqueness constraint was violated.
// For daily-login rewards this is an expected outcome, not a failure.
var ErrDuplicate = errors.New("resource already exists")

// AppError wraps a lower-level error with a status code and message.
// Storage failures are wrapped once and otherwise propagated unchanged.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
