// Package session owns the token lifecycle of one browser session and
// answers authorization queries from cached state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/ledger-console/internal/auth"
)

// ErrClosed is returned by mutations on a closed manager.
var ErrClosed = errors.New("session: manager closed")

// Gateway is the auth backend as seen by the manager.
type Gateway interface {
	Login(ctx context.Context, creds auth.Credentials) (auth.Result, error)
	Register(ctx context.Context, profile auth.Profile) (auth.Result, error)
	Me(ctx context.Context, token string) (auth.Identity, error)
	MyPermissions(ctx context.Context, token string) (auth.PermissionSet, error)
}

// Authorizer answers permission queries without network access.
type Authorizer interface {
	HasPermission(code string) bool
	HasAnyPermission(codes ...string) bool
	HasAllPermissions(codes ...string) bool
	Snapshot() Snapshot
	Token() string
}

// Authenticator mutates the session.
type Authenticator interface {
	Login(ctx context.Context, creds auth.Credentials) error
	Register(ctx context.Context, profile auth.Profile) error
	Logout(ctx context.Context) error
	RefreshPermissions(ctx context.Context)
}

// Options configures a Manager. Permissions, Logger and Events are optional.
type Options struct {
	Gateway     Gateway
	Tokens      TokenStore
	Permissions PermissionCache
	Logger      *slog.Logger
	Events      EventRecorder
}

type tokenChange struct {
	generation uint64
	token      string
}

type permissionState struct {
	codes        map[string]struct{}
	primaryAdmin bool
	role         *auth.Role
	status       PermissionStatus
}

// Manager is the single writer of the token pair. Every token transition
// bumps a generation counter; asynchronous results carry the generation
// they started under and are dropped when it is no longer current.
type Manager struct {
	gateway Gateway
	tokens  TokenStore
	cache   PermissionCache
	logger  *slog.Logger
	events  EventRecorder
	flight  singleflight.Group

	// writeMu serialises store writes with the in-memory transition.
	writeMu sync.Mutex

	mu         sync.RWMutex
	state      State
	current    Tokens
	identity   *auth.Identity
	perms      permissionState
	generation uint64
	pending    *tokenChange
	closed     bool
}

// NewManager builds an uninitialised manager.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		gateway: opts.Gateway,
		tokens:  opts.Tokens,
		cache:   opts.Permissions,
		logger:  logger,
		events:  opts.Events,
		perms:   permissionState{status: PermissionsNone},
	}
}

var (
	_ Authorizer    = (*Manager)(nil)
	_ Authenticator = (*Manager)(nil)
)

// Init reads the durable token store once. Without a token the manager is
// immediately ready; with one it resolves the identity before returning.
// Calling Init on a manager still resolving redelivers the pending token
// change, which is a no-op when a resolution for it is in flight.
func (m *Manager) Init(ctx context.Context) error {
	_, err, _ := m.flight.Do("init", func() (any, error) {
		return nil, m.init(ctx)
	})
	return err
}

func (m *Manager) init(ctx context.Context) error {
	m.mu.RLock()
	closed, state, pending := m.closed, m.state, m.pending
	m.mu.RUnlock()
	switch {
	case closed:
		return ErrClosed
	case state == StateReady:
		return nil
	case state == StateResolving:
		if pending != nil {
			m.dispatch(ctx, *pending)
		}
		return nil
	}

	m.writeMu.Lock()
	stored, err := m.tokens.Load(ctx)
	if err != nil {
		m.writeMu.Unlock()
		return fmt.Errorf("session: load tokens: %w", err)
	}
	m.mu.Lock()
	if m.closed || m.state != StateUninitialized {
		m.mu.Unlock()
		m.writeMu.Unlock()
		return nil
	}
	if stored.Access == "" {
		m.state = StateReady
		m.mu.Unlock()
		m.writeMu.Unlock()
		return nil
	}
	change := m.setTokensLocked(stored)
	m.state = StateResolving
	m.mu.Unlock()
	m.writeMu.Unlock()

	m.dispatch(ctx, change)
	return nil
}

// Close discards interest in every in-flight request. Stored tokens are kept.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.generation++
	m.mu.Unlock()
}

// Login submits credentials and, on success, persists the tokens and
// attaches the returned identity. Errors leave the session untouched.
func (m *Manager) Login(ctx context.Context, creds auth.Credentials) error {
	if m.isClosed() {
		return ErrClosed
	}
	res, err := m.gateway.Login(ctx, creds)
	if err != nil {
		m.record(EventLoginFailed)
		return err
	}
	if err := m.establish(ctx, res); err != nil {
		return err
	}
	m.record(EventLogin)
	return nil
}

// Register follows the Login contract using the registration endpoint.
func (m *Manager) Register(ctx context.Context, profile auth.Profile) error {
	if m.isClosed() {
		return ErrClosed
	}
	res, err := m.gateway.Register(ctx, profile)
	if err != nil {
		m.record(EventRegisterFailed)
		return err
	}
	if err := m.establish(ctx, res); err != nil {
		return err
	}
	m.record(EventRegister)
	return nil
}

func (m *Manager) establish(ctx context.Context, res auth.Result) error {
	tokens := Tokens{Access: res.AccessToken, Refresh: res.RefreshToken}

	m.writeMu.Lock()
	if err := m.tokens.Save(ctx, tokens); err != nil {
		m.writeMu.Unlock()
		return fmt.Errorf("session: persist tokens: %w", err)
	}
	if m.cache != nil {
		if err := m.cache.Invalidate(ctx); err != nil {
			m.logger.Warn("permission cache invalidate failed", slog.Any("error", err))
		}
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.writeMu.Unlock()
		return ErrClosed
	}
	change := m.setTokensLocked(tokens)
	identity := res.User
	m.identity = &identity
	m.state = StateReady
	m.mu.Unlock()
	m.writeMu.Unlock()

	m.dispatch(ctx, change)
	return nil
}

// Logout clears both tokens, the identity and the permission set. The
// in-memory session is cleared even when a store fails.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.endSession(ctx, nil)
	m.record(EventLogout)
	return err
}

// RefreshPermissions fetches the permission set for the current token.
// Failures clear the set; they are never returned.
func (m *Manager) RefreshPermissions(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.identity == nil || m.current.Access == "" {
		m.clearPermissionsLocked()
		m.mu.Unlock()
		return
	}
	change := tokenChange{generation: m.generation, token: m.current.Access}
	if m.perms.status != PermissionsCached {
		m.perms.status = PermissionsLoading
	}
	m.mu.Unlock()
	m.refreshPermissions(ctx, change)
}

// HasPermission reports whether code is granted.
func (m *Manager) HasPermission(code string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasLocked(code)
}

// HasAnyPermission reports whether at least one code is granted. An empty
// list imposes no requirement.
func (m *Manager) HasAnyPermission(codes ...string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(codes) == 0 || m.perms.primaryAdmin {
		return true
	}
	for _, code := range codes {
		if m.hasLocked(code) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every code is granted.
func (m *Manager) HasAllPermissions(codes ...string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.perms.primaryAdmin {
		return true
	}
	for _, code := range codes {
		if !m.hasLocked(code) {
			return false
		}
	}
	return true
}

func (m *Manager) hasLocked(code string) bool {
	if m.perms.primaryAdmin {
		return true
	}
	_, ok := m.perms.codes[strings.TrimSpace(code)]
	return ok
}

// Token returns the current access token, or "" when none is held.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Access
}

// Authenticated reports whether both a token and an identity are held.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Access != "" && m.identity != nil
}

// Snapshot copies the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := Snapshot{
		State:            m.state,
		Ready:            m.state == StateReady,
		Authenticated:    m.current.Access != "" && m.identity != nil,
		Token:            m.current.Access,
		IsPrimaryAdmin:   m.perms.primaryAdmin,
		PermissionStatus: m.perms.status,
		Permissions:      make([]string, 0, len(m.perms.codes)),
	}
	if m.identity != nil {
		id := *m.identity
		snap.User = &id
	}
	if m.perms.role != nil {
		role := *m.perms.role
		snap.Role = &role
	}
	for code := range m.perms.codes {
		snap.Permissions = append(snap.Permissions, code)
	}
	sort.Strings(snap.Permissions)
	return snap
}

// dispatch delivers a token change. Concurrent deliveries of the same
// generation share one resolution.
func (m *Manager) dispatch(ctx context.Context, change tokenChange) {
	key := "resolve:" + strconv.FormatUint(change.generation, 10)
	_, _, _ = m.flight.Do(key, func() (any, error) {
		m.resolveIdentity(ctx, change)
		return nil, nil
	})
}

func (m *Manager) resolveIdentity(ctx context.Context, change tokenChange) {
	identity, err := m.gateway.Me(ctx, change.token)
	if ctx.Err() != nil || !m.isCurrent(change) {
		m.logger.Debug("discarding stale identity resolution", slog.Uint64("generation", change.generation))
		return
	}
	if err != nil {
		m.logger.Warn("identity resolution failed, clearing session", slog.Any("error", err))
		m.record(EventIdentityRejected)
		if err := m.endSession(ctx, &change); err != nil {
			m.logger.Error("clear rejected session", slog.Any("error", err))
		}
		return
	}

	m.mu.Lock()
	if m.closed || m.generation != change.generation {
		m.mu.Unlock()
		return
	}
	m.identity = &identity
	m.state = StateReady
	m.pending = nil
	m.perms.status = PermissionsLoading
	m.mu.Unlock()
	m.record(EventIdentityResolved)

	m.applyCachedPermissions(ctx, change)
	m.refreshPermissions(ctx, change)
}

func (m *Manager) applyCachedPermissions(ctx context.Context, change tokenChange) {
	if m.cache == nil {
		return
	}
	set, ok, err := m.cache.Load(ctx)
	if err != nil {
		m.logger.Warn("permission cache load failed", slog.Any("error", err))
		return
	}
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.generation != change.generation || m.perms.status != PermissionsLoading {
		return
	}
	m.applyPermissionsLocked(set, PermissionsCached)
}

func (m *Manager) refreshPermissions(ctx context.Context, change tokenChange) {
	set, err := m.gateway.MyPermissions(ctx, change.token)

	m.mu.Lock()
	if ctx.Err() != nil || m.closed || m.generation != change.generation {
		m.mu.Unlock()
		return
	}
	if err != nil {
		m.clearPermissionsLocked()
		m.perms.status = PermissionsFailed
		m.mu.Unlock()
		m.logger.Warn("permission refresh failed, denying all", slog.Any("error", err))
		m.record(EventPermissionsFailed)
		if m.cache != nil {
			if err := m.cache.Invalidate(ctx); err != nil {
				m.logger.Warn("permission cache invalidate failed", slog.Any("error", err))
			}
		}
		return
	}
	m.applyPermissionsLocked(set, PermissionsFresh)
	m.mu.Unlock()
	m.record(EventPermissionsRefreshed)

	if m.cache != nil {
		if err := m.cache.Store(ctx, set); err != nil {
			m.logger.Warn("permission cache store failed", slog.Any("error", err))
		}
	}
}

// endSession clears tokens, identity and permissions. When only is set the
// session is cleared only if that token change is still current.
func (m *Manager) endSession(ctx context.Context, only *tokenChange) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if only != nil && (m.closed || m.generation != only.generation) {
		m.mu.Unlock()
		return nil
	}
	m.generation++
	m.current = Tokens{}
	m.identity = nil
	m.pending = nil
	m.clearPermissionsLocked()
	m.state = StateReady
	m.mu.Unlock()

	var errs []error
	if err := m.tokens.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("session: clear tokens: %w", err))
	}
	if m.cache != nil {
		if err := m.cache.Invalidate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("session: invalidate permissions: %w", err))
		}
	}
	return errors.Join(errs...)
}

// setTokensLocked installs a new token pair and starts a new generation.
func (m *Manager) setTokensLocked(tokens Tokens) tokenChange {
	m.generation++
	m.current = tokens
	m.identity = nil
	m.clearPermissionsLocked()
	change := tokenChange{generation: m.generation, token: tokens.Access}
	m.pending = &change
	return change
}

func (m *Manager) applyPermissionsLocked(set auth.PermissionSet, status PermissionStatus) {
	codes := make(map[string]struct{}, len(set.Permissions))
	for _, code := range set.Permissions {
		code = strings.TrimSpace(code)
		if code != "" {
			codes[code] = struct{}{}
		}
	}
	m.perms = permissionState{codes: codes, primaryAdmin: set.IsPrimaryAdmin, status: status}
	if set.Role != nil {
		role := *set.Role
		m.perms.role = &role
	}
}

func (m *Manager) clearPermissionsLocked() {
	m.perms = permissionState{status: PermissionsNone}
}

func (m *Manager) isCurrent(change tokenChange) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.closed && m.generation == change.generation
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *Manager) record(event string) {
	if m.events != nil {
		m.events.SessionEvent(event)
	}
}
