package session

import (
	"context"
	"sync"
	"time"

	"github.com/odyssey-erp/ledger-console/internal/auth"
)

// Fixed storage keys.
const (
	AccessTokenKey     = "access_token"
	RefreshTokenKey    = "refresh_token"
	PermissionCacheKey = "permissions_cache"
)

// Tokens is the persisted token pair.
type Tokens struct {
	Access  string
	Refresh string
}

// TokenStore durably persists the token pair of one browser session.
type TokenStore interface {
	Load(ctx context.Context) (Tokens, error)
	Save(ctx context.Context, tokens Tokens) error
	Clear(ctx context.Context) error
}

// PermissionCache is a best-effort, short-lived copy of the last fetched
// permission set. It is never authoritative.
type PermissionCache interface {
	Load(ctx context.Context) (auth.PermissionSet, bool, error)
	Store(ctx context.Context, set auth.PermissionSet) error
	Invalidate(ctx context.Context) error
}

// MemoryTokenStore keeps tokens in process memory.
type MemoryTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryTokenStore returns an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: make(map[string]string)}
}

// Load implements TokenStore.
func (s *MemoryTokenStore) Load(ctx context.Context) (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Tokens{Access: s.values[AccessTokenKey], Refresh: s.values[RefreshTokenKey]}, nil
}

// Save implements TokenStore.
func (s *MemoryTokenStore) Save(ctx context.Context, tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[AccessTokenKey] = tokens.Access
	if tokens.Refresh == "" {
		delete(s.values, RefreshTokenKey)
	} else {
		s.values[RefreshTokenKey] = tokens.Refresh
	}
	return nil
}

// Clear implements TokenStore.
func (s *MemoryTokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, AccessTokenKey)
	delete(s.values, RefreshTokenKey)
	return nil
}

// Has reports whether key is currently stored.
func (s *MemoryTokenStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// MemoryPermissionCache keeps one permission set in memory with a TTL.
type MemoryPermissionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	set     *auth.PermissionSet
	expires time.Time
}

// NewMemoryPermissionCache builds a cache whose entries expire after ttl.
// A zero ttl keeps entries until invalidated.
func NewMemoryPermissionCache(ttl time.Duration) *MemoryPermissionCache {
	return &MemoryPermissionCache{ttl: ttl, now: time.Now}
}

// Load implements PermissionCache.
func (c *MemoryPermissionCache) Load(ctx context.Context) (auth.PermissionSet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set == nil {
		return auth.PermissionSet{}, false, nil
	}
	if c.ttl > 0 && !c.now().Before(c.expires) {
		c.set = nil
		return auth.PermissionSet{}, false, nil
	}
	return clonePermissionSet(*c.set), true, nil
}

// Store implements PermissionCache.
func (c *MemoryPermissionCache) Store(ctx context.Context, set auth.PermissionSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := clonePermissionSet(set)
	c.set = &cp
	c.expires = c.now().Add(c.ttl)
	return nil
}

// Invalidate implements PermissionCache.
func (c *MemoryPermissionCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = nil
	return nil
}

func clonePermissionSet(set auth.PermissionSet) auth.PermissionSet {
	out := auth.PermissionSet{IsPrimaryAdmin: set.IsPrimaryAdmin}
	if set.Permissions != nil {
		out.Permissions = append([]string(nil), set.Permissions...)
	}
	if set.Role != nil {
		role := *set.Role
		out.Role = &role
	}
	return out
}
