package shared

import (
	"errors"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
)

// Alert kinds.
const (
	AlertSuccess      = "success"
	AlertError        = "error"
	AlertAccessDenied = "access_denied"
)

// Alert is a transient notification carrying a title and a message.
type Alert struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SuccessAlert builds a success alert.
func SuccessAlert(title, message string) Alert {
	return Alert{Kind: AlertSuccess, Title: title, Message: message}
}

// AlertFromError turns a failed action into a user facing alert. Authorization
// denials get the distinct Access Denied presentation.
func AlertFromError(err error) Alert {
	switch {
	case err == nil:
		return Alert{}
	case errors.Is(err, httpx.ErrForbidden):
		return Alert{Kind: AlertAccessDenied, Title: httpx.AccessDeniedTitle, Message: "You do not have permission to perform this action."}
	case errors.Is(err, httpx.ErrUnauthorized):
		return Alert{Kind: AlertError, Title: "Session Expired", Message: "Please sign in again."}
	case errors.Is(err, httpx.ErrUnavailable):
		return Alert{Kind: AlertError, Title: "Connection Problem", Message: "The server could not be reached. Please try again."}
	case errors.Is(err, httpx.ErrNotFound):
		return Alert{Kind: AlertError, Title: "Not Found", Message: "The requested record no longer exists."}
	case errors.Is(err, httpx.ErrValidation):
		return Alert{Kind: AlertError, Title: "Invalid Input", Message: UserSafeMessage(err)}
	case errors.Is(err, httpx.ErrConflict):
		return Alert{Kind: AlertError, Title: "Action Not Allowed", Message: UserSafeMessage(err)}
	default:
		return Alert{Kind: AlertError, Title: "Error", Message: "Something went wrong. Please try again."}
	}
}

// messager is implemented by errors that carry a backend supplied message.
type messager interface {
	UserMessage() string
}

// UserSafeMessage returns a message suitable for display.
func UserSafeMessage(err error) string {
	var m messager
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
