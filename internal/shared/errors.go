package shared

import (
	"errors"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
)

// ErrNoSession occurs when a handler runs outside the session middleware.
var ErrNoSession = errors.New("browser session missing")

// RuleError is a business-rule rejection raised before the backend is
// called. It matches httpx.ErrConflict.
type RuleError struct {
	Message string
}

func (e RuleError) Error() string        { return e.Message }
func (e RuleError) Is(target error) bool { return target == httpx.ErrConflict }
func (e RuleError) UserMessage() string  { return e.Message }
