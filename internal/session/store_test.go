package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledger-console/internal/auth"
)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisTokenStoreUsesFixedKeys(t *testing.T) {
	client, mr := newRedis(t)
	store := NewRedisTokenStore(client, "abc")
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, empty.Access)

	require.NoError(t, store.Save(ctx, Tokens{Access: "a1", Refresh: "r1"}))
	got, err := mr.Get("console:abc:access_token")
	require.NoError(t, err)
	require.Equal(t, "a1", got)
	got, err = mr.Get("console:abc:refresh_token")
	require.NoError(t, err)
	require.Equal(t, "r1", got)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, Tokens{Access: "a1", Refresh: "r1"}, loaded)

	require.NoError(t, store.Save(ctx, Tokens{Access: "a2"}))
	require.False(t, mr.Exists("console:abc:refresh_token"))

	require.NoError(t, store.Clear(ctx))
	require.False(t, mr.Exists("console:abc:access_token"))
}

func TestRedisPermissionCacheExpires(t *testing.T) {
	client, mr := newRedis(t)
	cache := NewRedisPermissionCache(client, "abc", time.Minute)
	ctx := context.Background()

	set := auth.PermissionSet{Permissions: []string{"account:view"}, Role: &auth.Role{Code: "CLERK"}}
	require.NoError(t, cache.Store(ctx, set))
	require.True(t, mr.Exists("console:abc:permissions_cache"))

	loaded, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, set, loaded)

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisPermissionCacheInvalidate(t *testing.T) {
	client, _ := newRedis(t)
	cache := NewRedisPermissionCache(client, "abc", time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, auth.PermissionSet{IsPrimaryAdmin: true}))
	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryPermissionCacheTTL(t *testing.T) {
	cache := NewMemoryPermissionCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, auth.PermissionSet{Permissions: []string{"x"}}))
	_, ok, _ := cache.Load(ctx)
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = cache.Load(ctx)
	require.False(t, ok)
}

type fakeRow struct {
	values []string
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		*(d.(*string)) = r.values[i]
	}
	return nil
}

type fakeQuerier struct {
	execs []string
	args  [][]any
	row   fakeRow
	err   error
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execs = append(q.execs, sql)
	q.args = append(q.args, args)
	return pgconn.NewCommandTag("INSERT 0 2"), q.err
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.row
}

func TestPGTokenStore(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{values: []string{"a1", "r1"}}}
	store := NewPGTokenStore(q, "abc")
	ctx := context.Background()

	require.NoError(t, EnsureTokenSchema(ctx, q))
	require.Contains(t, q.execs[0], "CREATE TABLE IF NOT EXISTS console_tokens")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, Tokens{Access: "a1", Refresh: "r1"}, loaded)

	require.NoError(t, store.Save(ctx, Tokens{Access: "a2", Refresh: "r2"}))
	require.True(t, strings.HasPrefix(q.execs[1], "INSERT INTO console_tokens"))
	require.Equal(t, []any{"abc", AccessTokenKey, "a2", RefreshTokenKey, "r2"}, q.args[1])

	require.NoError(t, store.Clear(ctx))
	require.True(t, strings.HasPrefix(q.execs[2], "DELETE FROM console_tokens"))
	require.Equal(t, []any{"abc", AccessTokenKey, RefreshTokenKey}, q.args[2])
}

func TestPGTokenStoreDropsEmptyRefreshToken(t *testing.T) {
	q := &fakeQuerier{}
	store := NewPGTokenStore(q, "abc")

	require.NoError(t, store.Save(context.Background(), Tokens{Access: "a3"}))
	require.Len(t, q.execs, 1)
	require.Contains(t, q.execs[0], "DELETE FROM console_tokens WHERE scope = $1 AND key = $4")
	require.Contains(t, q.execs[0], "INSERT INTO console_tokens")
	require.NotContains(t, q.execs[0], "$5")
	require.Equal(t, []any{"abc", AccessTokenKey, "a3", RefreshTokenKey}, q.args[0])
}

func TestPGTokenStoreWrapsErrors(t *testing.T) {
	boom := errors.New("conn refused")
	q := &fakeQuerier{row: fakeRow{err: boom}, err: boom}
	store := NewPGTokenStore(q, "abc")

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, store.Save(context.Background(), Tokens{Access: "a"}), boom)
}
