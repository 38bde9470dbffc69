package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StoreFactory builds the stores of one browser session.
type StoreFactory func(scope string) (TokenStore, PermissionCache)

type registryEntry struct {
	manager  *Manager
	lastUsed time.Time
}

// Registry maps browser session ids to their managers.
type Registry struct {
	gateway Gateway
	stores  StoreFactory
	logger  *slog.Logger
	events  EventRecorder
	now     func() time.Time

	mu        sync.Mutex
	entries   map[string]*registryEntry
	onRelease []func(scope string)
}

// NewRegistry builds an empty registry. events may be nil.
func NewRegistry(gateway Gateway, stores StoreFactory, logger *slog.Logger, events EventRecorder) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		gateway: gateway,
		stores:  stores,
		logger:  logger,
		events:  events,
		now:     time.Now,
		entries: make(map[string]*registryEntry),
	}
}

// Get returns the initialised manager for scope, creating it on first use.
func (r *Registry) Get(ctx context.Context, scope string) (*Manager, error) {
	r.mu.Lock()
	entry, ok := r.entries[scope]
	if !ok {
		tokens, cache := r.stores(scope)
		entry = &registryEntry{manager: NewManager(Options{
			Gateway:     r.gateway,
			Tokens:      tokens,
			Permissions: cache,
			Logger:      r.logger.With(slog.String("session", shortScope(scope))),
			Events:      r.events,
		})}
		r.entries[scope] = entry
	}
	entry.lastUsed = r.now()
	m := entry.manager
	r.mu.Unlock()

	if err := m.Init(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// OnRelease registers fn to run whenever a manager is forgotten or pruned.
// Hooks run outside the registry lock.
func (r *Registry) OnRelease(fn func(scope string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRelease = append(r.onRelease, fn)
}

// Forget closes and drops the manager for scope.
func (r *Registry) Forget(scope string) {
	r.mu.Lock()
	entry, ok := r.entries[scope]
	delete(r.entries, scope)
	hooks := r.onRelease
	r.mu.Unlock()
	if ok {
		entry.manager.Close()
	}
	for _, fn := range hooks {
		fn(scope)
	}
}

// Prune drops managers idle for longer than maxIdle and returns how many
// were removed. Their stored tokens survive and are reloaded on next use.
func (r *Registry) Prune(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	stale := make(map[string]*Manager)
	r.mu.Lock()
	for scope, entry := range r.entries {
		if entry.lastUsed.Before(cutoff) {
			stale[scope] = entry.manager
			delete(r.entries, scope)
		}
	}
	hooks := r.onRelease
	r.mu.Unlock()
	for scope, m := range stale {
		m.Close()
		for _, fn := range hooks {
			fn(scope)
		}
	}
	return len(stale)
}

// Len returns the number of live managers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func shortScope(scope string) string {
	if len(scope) > 8 {
		return scope[:8]
	}
	return scope
}
