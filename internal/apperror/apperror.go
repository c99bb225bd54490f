// Package apperror defines the application's error taxonomy.
//
// Every external-call failure in this app is caught at the call site and
// translated into one of the sentinel errors below. The HTTP layer maps
// sentinels to status codes with errors.Is; the service layer never sees an
// HTTP status. Fallback paths (template catalog, caption generation) absorb
// ErrUnavailable and ErrParse entirely — those two should only ever surface
// to a user as a soft notice, never as a failed request.
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
	ErrUnauthorized = errors.New("authentication required")
	ErrUnavailable  = errors.New("backend unavailable")
	ErrParse        = errors.New("parse failure")
	ErrUnconfigured = errors.New("not configured")
)

type AppError struct {
	Err     error  // sentinel classifying the failure
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for requests with no valid identity.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Unavailable wraps a transport failure against an external backend
// (template API, generative-language API, document store).
func Unavailable(backend string, cause error) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("%s is unavailable: %v", backend, cause),
	}
}

// ParseFailed marks a malformed response from an external backend.
func ParseFailed(backend, detail string) *AppError {
	return &AppError{
		Err:     ErrParse,
		Message: fmt.Sprintf("%s returned a malformed response: %s", backend, detail),
	}
}

// Unconfigured marks a feature whose backend credentials are missing.
// Callers degrade to a local fallback rather than surfacing this.
func Unconfigured(feature string) *AppError {
	return &AppError{
		Err:     ErrUnconfigured,
		Message: fmt.Sprintf("%s is not configured", feature),
	}
}
