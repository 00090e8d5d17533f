package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/shared"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service"
)

// MapErrorToStatusCode maps service errors to HTTP status codes. This keeps
// the mapping in one place so handlers never leak internal error types.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for a service
// error. Validation messages are safe to echo; everything else gets a fixed
// phrase per category.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, service.ErrUnauthorized):
		return "Authentication required"
	case errors.Is(err, service.ErrForbidden):
		return "You do not have permission to perform this action"
	case errors.Is(err, service.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, service.ErrConflict):
		return "Resource already exists"
	case errors.Is(err, service.ErrUnavailable):
		return "Service temporarily unavailable"
	default:
		return "An unexpected error occurred"
	}
}

// validationMessage strips the taxonomy prefix from a validation error so the
// client sees only the human-readable cause.
func validationMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		msg = msg[idx+2:]
	}
	if msg == "" {
		return "Validation error"
	}
	return msg
}

// RespondWithServiceError maps a service error to its status code and safe
// message, logging the underlying cause.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
