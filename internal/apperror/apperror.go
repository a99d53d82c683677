// Package apperror defines the error taxonomy shared by the storage layer,
// the service layer and the OMDb normalizer.
//
// Every error the core returns to a caller is an *AppError wrapping exactly one
// of the sentinels below. Callers classify with errors.Is:
//
//	if errors.Is(err, apperror.ErrConflict) { ... }
//
// The route layer maps the sentinels to HTTP status codes; nothing in this
// package knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// ErrStorage marks a persistence failure. The write has already been
	// rolled back when this is returned.
	ErrStorage = errors.New("storage error")

	// ErrTransport and ErrParse mark a failed external lookup. Neither means
	// "no such movie".
	ErrTransport = errors.New("transport error")
	ErrParse     = errors.New("parse error")
)

type AppError struct {
	Err     error  // sentinel class
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying driver or network error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports that resource already exists under key.
func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s %q already exists", resource, key),
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

// Storage wraps a persistence failure that happened while performing op.
func Storage(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: "storage: " + op,
		Cause:   cause,
	}
}

// Transport wraps a network failure talking to an external service.
func Transport(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrTransport,
		Message: "transport: " + op,
		Cause:   cause,
	}
}

// Parse wraps a failure decoding an external service response.
func Parse(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrParse,
		Message: "parse: " + op,
		Cause:   cause,
	}
}

// IsAppError reports whether err already carries a classification.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}
