// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by gateways and handlers.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("backend unavailable")
)

// AccessDeniedTitle is the problem title used for authorization denials.
const AccessDeniedTitle = "Access Denied"

// StatusFor maps a domain error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	detail := detailFor(err)
	switch status {
	case http.StatusNotFound:
		Problem(w, status, "Not Found", detail)
	case http.StatusConflict:
		Problem(w, status, "Conflict", detail)
	case http.StatusBadRequest:
		Problem(w, status, "Validation Failed", detail)
	case http.StatusForbidden:
		Problem(w, status, AccessDeniedTitle, detail)
	case http.StatusUnauthorized:
		Problem(w, status, "Unauthorized", detail)
	case http.StatusBadGateway:
		Problem(w, status, "Backend Unavailable", detail)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// detailFor prefers the backend supplied message over the wrapped chain.
func detailFor(err error) string {
	var m interface{ UserMessage() string }
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
