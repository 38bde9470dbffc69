package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
)

type backendMessage struct{ msg string }

func (e backendMessage) Error() string       { return "backend: " + e.msg }
func (e backendMessage) UserMessage() string { return e.msg }
func (e backendMessage) Is(target error) bool { return target == httpx.ErrValidation }

func TestAlertFromErrorDistinguishesAccessDenied(t *testing.T) {
	alert := AlertFromError(fmt.Errorf("delete: %w", httpx.ErrForbidden))
	require.Equal(t, AlertAccessDenied, alert.Kind)
	require.Equal(t, httpx.AccessDeniedTitle, alert.Title)
	require.NotEmpty(t, alert.Message)

	generic := AlertFromError(errors.New("boom"))
	require.Equal(t, AlertError, generic.Kind)
	require.NotEmpty(t, generic.Title)
	require.NotEmpty(t, generic.Message)
}

func TestAlertFromErrorUsesBackendMessageForValidation(t *testing.T) {
	alert := AlertFromError(backendMessage{msg: "name is required"})
	require.Equal(t, "Invalid Input", alert.Title)
	require.Equal(t, "name is required", alert.Message)
}
