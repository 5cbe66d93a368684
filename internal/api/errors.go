package api

import (
	"errors"
	"net/http"

	"github.com/madaminovabdulaziz/avilingo-sub001/internal/domain"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/auth"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/service/review"
	"github.com/madaminovabdulaziz/avilingo-sub001/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, review.ErrTermNotFound):
		return http.StatusNotFound

	// Concurrency conflicts: retries exhausted, caller may resubmit
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTermNotFound),
		errors.Is(err, review.ErrTermNotFound):
		return "Vocabulary term not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Concurrency conflicts
	case errors.Is(err, store.ErrConflict):
		return "The request conflicted with a concurrent update; please retry"

	// Validation errors carry no internals, pass the message through
	case errors.Is(err, domain.ErrValidation):
		return err.Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// statusAndMessage combines status mapping and message sanitization.
func statusAndMessage(err error) (int, string) {
	return MapErrorToStatusCode(err), GetSafeErrorMessage(err)
}
