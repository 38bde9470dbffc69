package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledger-console/internal/auth"
	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
	"github.com/odyssey-erp/ledger-console/internal/session"
	"github.com/odyssey-erp/ledger-console/internal/shared"
	_ "github.com/odyssey-erp/ledger-console/testing"
)

type stubGateway struct {
	perms auth.PermissionSet
}

func (g stubGateway) Login(ctx context.Context, creds auth.Credentials) (auth.Result, error) {
	return auth.Result{AccessToken: "tok", User: auth.Identity{ID: "u1"}}, nil
}

func (g stubGateway) Register(ctx context.Context, profile auth.Profile) (auth.Result, error) {
	return auth.Result{}, nil
}

func (g stubGateway) Me(ctx context.Context, token string) (auth.Identity, error) {
	return auth.Identity{ID: "u1"}, nil
}

func (g stubGateway) MyPermissions(ctx context.Context, token string) (auth.PermissionSet, error) {
	return g.perms, nil
}

func serve(t *testing.T, m *session.Manager, browser *shared.Session, mw func(http.Handler) http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/accounting/accounts", nil)
	ctx := req.Context()
	if m != nil {
		ctx = session.ContextWithManager(ctx, m)
	}
	if browser != nil {
		ctx = shared.ContextWithSession(ctx, browser)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req.WithContext(ctx))
	return rr
}

func loggedIn(t *testing.T, perms auth.PermissionSet) *session.Manager {
	t.Helper()
	m := session.NewManager(session.Options{Gateway: stubGateway{perms: perms}, Tokens: session.NewMemoryTokenStore()})
	require.NoError(t, m.Login(context.Background(), auth.Credentials{Email: "a@b.co", Password: "x"}))
	return m
}

func TestRequireAnyWithoutSessionIsUnauthorized(t *testing.T) {
	rr := serve(t, nil, nil, Middleware{}.RequireAny("account:view"))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	anon := session.NewManager(session.Options{Gateway: stubGateway{}, Tokens: session.NewMemoryTokenStore()})
	require.NoError(t, anon.Init(context.Background()))
	rr = serve(t, anon, nil, Middleware{}.RequireAny("account:view"))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAnyDeniesWithAccessDenied(t *testing.T) {
	m := loggedIn(t, auth.PermissionSet{Permissions: []string{"user:view"}})
	browser := &shared.Session{ID: "b"}

	rr := serve(t, m, browser, Middleware{}.RequireAny("account:view", "account:edit"))
	require.Equal(t, http.StatusForbidden, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	require.Equal(t, httpx.AccessDeniedTitle, problem.Title)

	alert := browser.PopAlert()
	require.NotNil(t, alert)
	require.Equal(t, shared.AlertAccessDenied, alert.Kind)
}

func TestRequireAnyAndAll(t *testing.T) {
	m := loggedIn(t, auth.PermissionSet{Permissions: []string{"account:view", "account:edit"}})

	require.Equal(t, http.StatusNoContent, serve(t, m, nil, Middleware{}.RequireAny("account:delete", " account:view ")).Code)
	require.Equal(t, http.StatusNoContent, serve(t, m, nil, Middleware{}.RequireAll("account:view", "account:edit")).Code)
	require.Equal(t, http.StatusForbidden, serve(t, m, nil, Middleware{}.RequireAll("account:view", "account:delete")).Code)
}

func TestPrimaryAdminPassesEveryGate(t *testing.T) {
	m := loggedIn(t, auth.PermissionSet{IsPrimaryAdmin: true})

	require.Equal(t, http.StatusNoContent, serve(t, m, nil, Middleware{}.RequireAll("role:edit", "user:delete")).Code)
}

func TestNormalizePermissionsKeepsCase(t *testing.T) {
	require.Equal(t, []string{"User:Invite", "user:invite"}, normalizePermissions([]string{" User:Invite", "user:invite", "", "user:invite"}))
}

type blockingGateway struct {
	stubGateway
	started chan struct{}
	release chan auth.PermissionSet
}

func (g blockingGateway) MyPermissions(ctx context.Context, token string) (auth.PermissionSet, error) {
	close(g.started)
	return <-g.release, nil
}

func TestCachedPermissionsNeverAuthorize(t *testing.T) {
	ctx := context.Background()
	tokens := session.NewMemoryTokenStore()
	require.NoError(t, tokens.Save(ctx, session.Tokens{Access: "tok"}))
	cache := session.NewMemoryPermissionCache(time.Minute)
	require.NoError(t, cache.Store(ctx, auth.PermissionSet{IsPrimaryAdmin: true}))

	gw := blockingGateway{started: make(chan struct{}), release: make(chan auth.PermissionSet)}
	m := session.NewManager(session.Options{Gateway: gw, Tokens: tokens, Permissions: cache})
	initDone := make(chan error, 1)
	go func() { initDone <- m.Init(ctx) }()
	<-gw.started

	snap := m.Snapshot()
	require.Equal(t, session.PermissionsCached, snap.PermissionStatus)
	require.True(t, snap.Ready)

	rr := serve(t, m, nil, Middleware{}.RequireAny("account:delete"))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "1", rr.Header().Get("Retry-After"))

	gw.release <- auth.PermissionSet{Permissions: []string{"account:view"}}
	require.NoError(t, <-initDone)
	require.Equal(t, session.PermissionsFresh, m.Snapshot().PermissionStatus)

	require.Equal(t, http.StatusForbidden, serve(t, m, nil, Middleware{}.RequireAny("account:delete")).Code)
	require.Equal(t, http.StatusNoContent, serve(t, m, nil, Middleware{}.RequireAny("account:view")).Code)
}

type failingGateway struct{ stubGateway }

func (failingGateway) MyPermissions(ctx context.Context, token string) (auth.PermissionSet, error) {
	return auth.PermissionSet{}, errors.New("backend down")
}

func TestFailedPermissionFetchDenies(t *testing.T) {
	m := session.NewManager(session.Options{Gateway: failingGateway{}, Tokens: session.NewMemoryTokenStore()})
	require.NoError(t, m.Login(context.Background(), auth.Credentials{Email: "a@b.co", Password: "x"}))
	require.Equal(t, session.PermissionsFailed, m.Snapshot().PermissionStatus)

	require.Equal(t, http.StatusForbidden, serve(t, m, nil, Middleware{}.RequireAny("account:view")).Code)
}
