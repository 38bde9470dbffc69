// Package rbac gates routes on the permission set held by the session manager.
package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
	"github.com/odyssey-erp/ledger-console/internal/session"
	"github.com/odyssey-erp/ledger-console/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAuth rejects requests without an authenticated session.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.authenticated(w, r); ok {
			next.ServeHTTP(w, r)
		}
	})
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.require(normalized, func(a session.Authorizer) bool {
		return a.HasAnyPermission(normalized...)
	})
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.require(normalized, func(a session.Authorizer) bool {
		return a.HasAllPermissions(normalized...)
	})
}

func (m Middleware) require(perms []string, allowed func(session.Authorizer) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mgr, ok := m.authenticated(w, r)
			if !ok {
				return
			}
			if !settled(mgr.Snapshot().PermissionStatus) {
				if m.Logger != nil {
					m.Logger.Info("permissions still loading", slog.String("path", r.URL.Path))
				}
				w.Header().Set("Retry-After", "1")
				httpx.Problem(w, http.StatusServiceUnavailable, "Permissions Loading", "permissions are still being loaded, retry shortly")
				return
			}
			if allowed(mgr) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Info("access denied", slog.String("path", r.URL.Path), slog.Any("required", perms))
			}
			shared.Fail(w, r, httpx.ErrForbidden)
		})
	}
}

// settled reports whether the permission set came from the backend. A cached
// set only bridges the gap until the fetch returns and never grants access.
// A failed fetch leaves an empty set, so every check denies.
func settled(status session.PermissionStatus) bool {
	return status == session.PermissionsFresh || status == session.PermissionsFailed
}

func (m Middleware) authenticated(w http.ResponseWriter, r *http.Request) (*session.Manager, bool) {
	mgr := session.FromContext(r.Context())
	if mgr == nil || !mgr.Authenticated() {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, false
	}
	return mgr, true
}

// normalizePermissions trims and de-duplicates codes. Codes are opaque, so
// case is preserved.
func normalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
