package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an Orbit error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrNameAlreadyExists ErrorCode = "NAME_ALREADY_EXISTS" // 409
	ErrConflict          ErrorCode = "CONFLICT"            // 409
	ErrValueTooLarge     ErrorCode = "VALUE_TOO_LARGE"     // 413
	ErrInternal          ErrorCode = "INTERNAL"            // 500
)

// OrbitError represents a structured error with code, status, and details.
type OrbitError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *OrbitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *OrbitError {
	return &OrbitError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing contact, constellation, artifact or interaction.
func NewNotFound(kind, identifier string) *OrbitError {
	return &OrbitError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewNameAlreadyExists creates a 409 error for name collisions.
func NewNameAlreadyExists(kind, name string) *OrbitError {
	return &OrbitError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("%s with name %q already exists", kind, name),
		Details: map[string]any{"kind": kind, "name": name},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *OrbitError {
	return &OrbitError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewValueTooLarge creates a 413 error when a name or artifact value exceeds its limit.
func NewValueTooLarge(field string, max, actual int) *OrbitError {
	return &OrbitError{
		Code:    ErrValueTooLarge,
		Status:  413,
		Message: fmt.Sprintf("%s exceeds maximum size: %d chars (max %d)", field, actual, max),
		Details: map[string]any{"field": field, "max_chars": max, "actual_chars": actual},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The original error is kept in Details for logging; the message stays generic.
func NewInternal(err error) *OrbitError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &OrbitError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is (or wraps) an OrbitError with the given code.
func Is(err error, code ErrorCode) bool {
	var oErr *OrbitError
	if stderrors.As(err, &oErr) {
		return oErr.Code == code
	}
	return false
}

// As extracts an OrbitError from err, wrapping unknown errors as internal.
func As(err error) *OrbitError {
	var oErr *OrbitError
	if stderrors.As(err, &oErr) {
		return oErr
	}
	return NewInternal(err)
}
