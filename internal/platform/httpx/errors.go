package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across domain packages.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps domain errors to HTTP responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		NotFound(w)
	case errors.Is(err, ErrDuplicate):
		JSON(w, http.StatusConflict, Detail{Detail: err.Error()})
	case errors.Is(err, ErrValidation):
		JSON(w, http.StatusBadRequest, Detail{Detail: err.Error()})
	case errors.Is(err, ErrForbidden):
		Forbidden(w)
	case errors.Is(err, ErrUnauthorized):
		Unauthorized(w, "Authentication credentials were not provided.")
	default:
		JSON(w, http.StatusInternalServerError, Detail{Detail: "Internal server error."})
	}
}
