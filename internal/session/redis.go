package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/ledger-console/internal/auth"
)

func scopedKey(scope, key string) string {
	return "console:" + scope + ":" + key
}

// RedisTokenStore persists tokens in Redis without expiry.
type RedisTokenStore struct {
	client *redis.Client
	scope  string
}

// NewRedisTokenStore scopes a token store to one browser session.
func NewRedisTokenStore(client *redis.Client, scope string) *RedisTokenStore {
	return &RedisTokenStore{client: client, scope: scope}
}

// Load implements TokenStore.
func (s *RedisTokenStore) Load(ctx context.Context) (Tokens, error) {
	vals, err := s.client.MGet(ctx, scopedKey(s.scope, AccessTokenKey), scopedKey(s.scope, RefreshTokenKey)).Result()
	if err != nil {
		return Tokens{}, fmt.Errorf("session: redis load tokens: %w", err)
	}
	var t Tokens
	if v, ok := vals[0].(string); ok {
		t.Access = v
	}
	if v, ok := vals[1].(string); ok {
		t.Refresh = v
	}
	return t, nil
}

// Save implements TokenStore.
func (s *RedisTokenStore) Save(ctx context.Context, tokens Tokens) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, scopedKey(s.scope, AccessTokenKey), tokens.Access, 0)
		if tokens.Refresh == "" {
			pipe.Del(ctx, scopedKey(s.scope, RefreshTokenKey))
		} else {
			pipe.Set(ctx, scopedKey(s.scope, RefreshTokenKey), tokens.Refresh, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis save tokens: %w", err)
	}
	return nil
}

// Clear implements TokenStore.
func (s *RedisTokenStore) Clear(ctx context.Context) error {
	err := s.client.Del(ctx, scopedKey(s.scope, AccessTokenKey), scopedKey(s.scope, RefreshTokenKey)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: redis clear tokens: %w", err)
	}
	return nil
}

// RedisPermissionCache stores the permission set as JSON with a TTL.
type RedisPermissionCache struct {
	client *redis.Client
	scope  string
	ttl    time.Duration
}

// NewRedisPermissionCache scopes a permission cache to one browser session.
func NewRedisPermissionCache(client *redis.Client, scope string, ttl time.Duration) *RedisPermissionCache {
	return &RedisPermissionCache{client: client, scope: scope, ttl: ttl}
}

// Load implements PermissionCache.
func (c *RedisPermissionCache) Load(ctx context.Context) (auth.PermissionSet, bool, error) {
	raw, err := c.client.Get(ctx, scopedKey(c.scope, PermissionCacheKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.PermissionSet{}, false, nil
		}
		return auth.PermissionSet{}, false, fmt.Errorf("session: redis load permissions: %w", err)
	}
	var set auth.PermissionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return auth.PermissionSet{}, false, fmt.Errorf("session: decode cached permissions: %w", err)
	}
	return set, true, nil
}

// Store implements PermissionCache.
func (c *RedisPermissionCache) Store(ctx context.Context, set auth.PermissionSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, scopedKey(c.scope, PermissionCacheKey), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis store permissions: %w", err)
	}
	return nil
}

// Invalidate implements PermissionCache.
func (c *RedisPermissionCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, scopedKey(c.scope, PermissionCacheKey)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: redis invalidate permissions: %w", err)
	}
	return nil
}
