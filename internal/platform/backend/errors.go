package backend

import (
	"fmt"
	"net/http"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
)

// Kind classifies a backend failure.
type Kind int

const (
	// KindTransport means no response was received.
	KindTransport Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is returned for every failed backend call.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("backend: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers match backend failures against the httpx sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case httpx.ErrUnavailable:
		return e.Kind == KindTransport || e.Kind == KindServer
	case httpx.ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case httpx.ErrForbidden:
		return e.Kind == KindForbidden
	case httpx.ErrValidation:
		return e.Kind == KindValidation
	case httpx.ErrNotFound:
		return e.Kind == KindNotFound
	case httpx.ErrConflict:
		return e.Kind == KindConflict
	}
	return false
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindServer
	}
}

// UserMessage returns the message reported by the backend.
func (e *Error) UserMessage() string { return e.Message }
