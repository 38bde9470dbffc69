package session

import (
	"fmt"

	"github.com/odyssey-erp/ledger-console/internal/auth"
)

// State is the readiness of a Manager.
type State int

const (
	// StateUninitialized means Init has not read the token store yet.
	StateUninitialized State = iota
	// StateResolving means a stored token is being resolved into an identity.
	StateResolving
	// StateReady means resolution completed, successfully or not.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResolving:
		return "resolving"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "uninitialized":
		*s = StateUninitialized
	case "resolving":
		*s = StateResolving
	case "ready":
		*s = StateReady
	default:
		return fmt.Errorf("session: unknown state %q", text)
	}
	return nil
}

// PermissionStatus tells consumers how far the permission set can be trusted.
type PermissionStatus string

const (
	PermissionsNone    PermissionStatus = "none"
	PermissionsLoading PermissionStatus = "loading"
	PermissionsCached  PermissionStatus = "cached"
	PermissionsFresh   PermissionStatus = "fresh"
	PermissionsFailed  PermissionStatus = "failed"
)

// Snapshot is a point-in-time copy of the manager state.
type Snapshot struct {
	State            State            `json:"state"`
	Ready            bool             `json:"ready"`
	Authenticated    bool             `json:"authenticated"`
	Token            string           `json:"-"`
	User             *auth.Identity   `json:"user,omitempty"`
	Permissions      []string         `json:"permissions"`
	IsPrimaryAdmin   bool             `json:"isPrimaryAdmin"`
	Role             *auth.Role       `json:"role,omitempty"`
	PermissionStatus PermissionStatus `json:"permissionStatus"`
}

// Session events reported to an EventRecorder.
const (
	EventLogin                = "login"
	EventLoginFailed          = "login_failed"
	EventRegister             = "register"
	EventRegisterFailed       = "register_failed"
	EventLogout               = "logout"
	EventIdentityResolved     = "identity_resolved"
	EventIdentityRejected     = "identity_rejected"
	EventPermissionsRefreshed = "permissions_refreshed"
	EventPermissionsFailed    = "permissions_failed"
)

// EventRecorder receives session lifecycle events.
type EventRecorder interface {
	SessionEvent(event string)
}
