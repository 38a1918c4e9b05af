// Package apperror defines the error kinds services return and the symbolic
// codes clients receive for them.
package apperror

import (
	"errors"
	"net/http"
)

// Kinds. Every AppError unwraps to one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError is a client facing failure with a symbolic code
type AppError struct {
	Kind    error
	Code    int
	Message string
}

// New creates an AppError of the given kind
func New(kind error, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// Status maps the error kind to an HTTP status
func (e *AppError) Status() int {
	switch {
	case errors.Is(e.Kind, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(e.Kind, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(e.Kind, ErrConflict):
		return http.StatusUnprocessableEntity
	case errors.Is(e.Kind, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(e.Kind, ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Generic failures keyed by HTTP status.
var (
	InvalidBody  = New(ErrValidation, CodeInvalidRequest, "Invalid request body")
	Unauthorized = New(ErrUnauthorized, http.StatusUnauthorized, "Please login to continue")
	NoEndpoint   = New(ErrNotFound, http.StatusNotFound, "Invalid Endpoint")
)

// InternalMessage is the only text a client sees for unexpected failures
const InternalMessage = "Something went wrong"
