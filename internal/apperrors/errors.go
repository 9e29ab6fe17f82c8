package apperrors

import (
	"errors"
	"net/http"
)

// Error kinds. Every service-layer failure wraps exactly one of these so the
// HTTP boundary can map it to a status code without inspecting messages.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// AppError carries an HTTP status code and a fixed human-readable message.
// Messages are part of the observable contract; tests assert on exact text.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// InvalidInput reports a request that violates a validation rule.
func InvalidInput(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrInvalidInput)
}

// Unauthorized reports missing or unusable credentials.
func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

// Forbidden reports an authenticated identity lacking a required role.
func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

// NotFound reports an absent resource.
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

// Conflict reports a duplicate resource. It maps to 400, not 409: the
// duplicate-email contract predates this service and clients rely on it.
func Conflict(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrConflict)
}

// Internal wraps an unexpected failure without leaking detail to clients.
func Internal(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}

// StatusCode returns the HTTP status for err: the embedded code for an
// AppError, 500 for anything else.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
