package authhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledger-console/internal/auth"
	"github.com/odyssey-erp/ledger-console/internal/platform/backend"
	"github.com/odyssey-erp/ledger-console/internal/session"
	"github.com/odyssey-erp/ledger-console/internal/shared"
	_ "github.com/odyssey-erp/ledger-console/testing"
)

type stubAuth struct {
	loginErr   error
	meErr      error
	resetToken string
	resetErr   error
}

func (s *stubAuth) Login(ctx context.Context, creds auth.Credentials) (auth.Result, error) {
	if s.loginErr != nil {
		return auth.Result{}, s.loginErr
	}
	return auth.Result{AccessToken: "tok", RefreshToken: "ref", User: auth.Identity{ID: "u1", Email: creds.Email}}, nil
}

func (s *stubAuth) Register(ctx context.Context, profile auth.Profile) (auth.Result, error) {
	return auth.Result{AccessToken: "tok", User: auth.Identity{ID: "u2", Email: profile.Email}}, nil
}

func (s *stubAuth) Me(ctx context.Context, token string) (auth.Identity, error) {
	if s.meErr != nil {
		return auth.Identity{}, s.meErr
	}
	return auth.Identity{ID: "u1", Email: "alice@example.com"}, nil
}

func (s *stubAuth) MyPermissions(ctx context.Context, token string) (auth.PermissionSet, error) {
	return auth.PermissionSet{Permissions: []string{"account:view"}}, nil
}

func (s *stubAuth) ForgotPassword(ctx context.Context, email string) error { return nil }

func (s *stubAuth) ValidateResetToken(ctx context.Context, token string) error {
	s.resetToken = token
	return s.resetErr
}

func (s *stubAuth) ResetPassword(ctx context.Context, reset auth.PasswordReset) error { return nil }

type recordingRelease struct {
	forgotten []string
	destroyed []string
}

func (r *recordingRelease) Forget(scope string) { r.forgotten = append(r.forgotten, scope) }

func (r *recordingRelease) Destroy(sess *shared.Session) { r.destroyed = append(r.destroyed, sess.ID) }

type fixture struct {
	router  chi.Router
	manager *session.Manager
	browser *shared.Session
	tokens  *session.MemoryTokenStore
	release *recordingRelease
}

func newFixture(t *testing.T, gw *stubAuth) fixture {
	t.Helper()
	tokens := session.NewMemoryTokenStore()
	m := session.NewManager(session.Options{Gateway: gw, Tokens: tokens})
	require.NoError(t, m.Init(context.Background()))
	browser := &shared.Session{ID: "b1"}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithSession(req.Context(), browser)
			ctx = session.ContextWithManager(ctx, m)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	release := &recordingRelease{}
	r.Route("/auth", NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), gw, release, release).MountRoutes)
	return fixture{router: r, manager: m, browser: browser, tokens: tokens, release: release}
}

func (f fixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestLoginEstablishesSession(t *testing.T) {
	f := newFixture(t, &stubAuth{})

	rr := f.do(http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, f.manager.Authenticated())
	require.True(t, f.tokens.Has(session.AccessTokenKey))

	var body struct {
		Alert shared.Alert     `json:"alert"`
		Data  session.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Signed In", body.Alert.Title)
	require.True(t, body.Data.Authenticated)
	require.NotContains(t, rr.Body.String(), "tok\"")

	alert := f.browser.PopAlert()
	require.NotNil(t, alert)
	require.Equal(t, shared.AlertSuccess, alert.Kind)
}

func TestLoginValidationFailure(t *testing.T) {
	f := newFixture(t, &stubAuth{})

	rr := f.do(http.MethodPost, "/auth/login", map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "\"email\"")
	require.Contains(t, rr.Body.String(), "\"password\"")
	require.False(t, f.manager.Authenticated())
}

func TestLoginRejectedSetsErrorAlert(t *testing.T) {
	f := newFixture(t, &stubAuth{loginErr: &backend.Error{Kind: backend.KindUnauthorized, Status: 401, Message: "Invalid credentials"}})

	rr := f.do(http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), "Invalid credentials")
	require.False(t, f.manager.Authenticated())

	alert := f.browser.PopAlert()
	require.NotNil(t, alert)
	require.Equal(t, shared.AlertError, alert.Kind)
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFixture(t, &stubAuth{})
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "x"}).Code)

	rr := f.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, f.manager.Authenticated())
	require.False(t, f.tokens.Has(session.AccessTokenKey))
	require.Equal(t, []string{"b1"}, f.release.forgotten)
	require.Equal(t, []string{"b1"}, f.release.destroyed)
	require.Contains(t, rr.Body.String(), "Signed Out")
}

func TestLoginWithRejectedIdentityIsUnauthorized(t *testing.T) {
	f := newFixture(t, &stubAuth{meErr: &backend.Error{Kind: backend.KindUnauthorized, Status: 401, Message: "Token revoked"}})

	rr := f.do(http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "secret"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.NotContains(t, rr.Body.String(), "Signed In")
	require.False(t, f.manager.Authenticated())
	require.False(t, f.tokens.Has(session.AccessTokenKey))

	alert := f.browser.PopAlert()
	require.NotNil(t, alert)
	require.Equal(t, shared.AlertError, alert.Kind)

	rr = f.do(http.MethodPost, "/auth/register", map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret123", "companyName": "Acme"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, f.manager.Authenticated())
}

func TestRefreshPermissionsRequiresSession(t *testing.T) {
	f := newFixture(t, &stubAuth{})

	rr := f.do(http.MethodPost, "/auth/permissions/refresh", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestValidateResetTokenPassesThrough(t *testing.T) {
	gw := &stubAuth{}
	f := newFixture(t, gw)

	rr := f.do(http.MethodGet, "/auth/validate-reset-token?token=abc", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "abc", gw.resetToken)

	gw.resetErr = &backend.Error{Kind: backend.KindNotFound, Status: 404, Message: "Reset link expired"}
	rr = f.do(http.MethodGet, "/auth/validate-reset-token?token=old", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(http.MethodGet, "/auth/validate-reset-token", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
