package shared

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
)

// ActionResponse is the body of a successful mutation.
type ActionResponse struct {
	Alert *Alert `json:"alert,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Fail replaces the pending alert with one describing err and writes the
// matching problem response.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	alert := AlertFromError(err)
	if sess := SessionFromContext(r.Context()); sess != nil {
		sess.SetAlert(alert)
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		httpx.ValidationProblem(w, verr.Fields)
		return
	}
	httpx.RespondError(w, err)
}

// Succeed replaces the pending alert and writes data alongside it.
func Succeed(w http.ResponseWriter, r *http.Request, status int, alert Alert, data any) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		sess.SetAlert(alert)
	}
	httpx.JSON(w, status, ActionResponse{Alert: &alert, Data: data})
}
