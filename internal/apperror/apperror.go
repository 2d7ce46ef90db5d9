// Package apperror defines the error vocabulary shared by every layer.
//
// Repositories and services return these errors; transports (the JSON-RPC
// dispatcher, the OAuth handlers) translate them into wire codes and HTTP
// statuses. Callers test for a kind with errors.Is against the sentinels.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("storage unavailable")
	ErrInternal     = errors.New("internal error")
)

// Fixed messages for the two access tiers.
const (
	UnauthenticatedMessage = "Please login (10001)"
	NotAdminMessage        = "You do not have required permission (10002)"
)

type AppError struct {
	Err     error  // sentinel
	Message string // human-readable message
	Field   string // optional: input field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for a caller without a valid session.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Unavailable reports that the backing store is not configured or unreachable.
func Unavailable(operation string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("%s: storage unavailable", operation),
	}
}

// Internal wraps a failure whose message is safe to show to callers.
func Internal(message string) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: message,
	}
}
