package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/taskman/internal/api/shared"
	"github.com/phrazzld/taskman/internal/avatar"
	"github.com/phrazzld/taskman/internal/domain"
	"github.com/phrazzld/taskman/internal/service/auth"
	"github.com/phrazzld/taskman/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Login failures are a bad request, not an authentication challenge
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusBadRequest

	// Authentication errors
	case auth.IsAuthError(err),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrInvalidBody),
		errors.Is(err, avatar.ErrUnsupportedFormat),
		errors.Is(err, avatar.ErrTooLarge),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors; a malformed id cannot name an existing resource
	case store.IsNotFoundError(err),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

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

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Login failed"

	case auth.IsAuthError(err),
		errors.Is(err, domain.ErrUnauthorized):
		return "Please authenticate."

	case store.IsNotFoundError(err),
		errors.Is(err, domain.ErrInvalidID):
		return "Not found"

	case errors.As(err, &verr):
		return verr.Error()

	case errors.Is(err, shared.ErrInvalidBody):
		return "Invalid request format"

	case errors.Is(err, avatar.ErrUnsupportedFormat):
		return avatar.ErrUnsupportedFormat.Error()

	case errors.Is(err, avatar.ErrDimensionsTooLarge):
		return avatar.ErrDimensionsTooLarge.Error()

	case errors.Is(err, avatar.ErrTooLarge):
		return avatar.ErrTooLarge.Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for err. A non-empty fallback replaces
// the generic message of 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	var verr *domain.ValidationError
	if status == http.StatusBadRequest && errors.As(err, &verr) && verr.Field != "" {
		opts = append(opts, shared.WithField(verr.Field))
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
