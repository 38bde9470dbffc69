package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const tokenSchema = `CREATE TABLE IF NOT EXISTS console_tokens (
	scope      TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (scope, key)
)`

const loadTokensSQL = `SELECT
	COALESCE(MAX(value) FILTER (WHERE key = $2), ''),
	COALESCE(MAX(value) FILTER (WHERE key = $3), '')
FROM console_tokens WHERE scope = $1`

const saveTokensSQL = `INSERT INTO console_tokens (scope, key, value, updated_at)
VALUES ($1, $2, $3, now()), ($1, $4, $5, now())
ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// saveAccessOnlySQL drops a stale refresh row in the same statement.
const saveAccessOnlySQL = `WITH dropped AS (
	DELETE FROM console_tokens WHERE scope = $1 AND key = $4
)
INSERT INTO console_tokens (scope, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

const clearTokensSQL = `DELETE FROM console_tokens WHERE scope = $1 AND key IN ($2, $3)`

// PGQuerier is the subset of pgxpool.Pool used by PGTokenStore.
type PGQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGTokenStore persists tokens in PostgreSQL.
type PGTokenStore struct {
	db    PGQuerier
	scope string
}

// NewPGTokenStore scopes a token store to one browser session.
func NewPGTokenStore(db PGQuerier, scope string) *PGTokenStore {
	return &PGTokenStore{db: db, scope: scope}
}

// EnsureTokenSchema creates the token table when missing.
func EnsureTokenSchema(ctx context.Context, db PGQuerier) error {
	if _, err := db.Exec(ctx, tokenSchema); err != nil {
		return fmt.Errorf("session: ensure token schema: %w", err)
	}
	return nil
}

// Load implements TokenStore.
func (s *PGTokenStore) Load(ctx context.Context) (Tokens, error) {
	var t Tokens
	if err := s.db.QueryRow(ctx, loadTokensSQL, s.scope, AccessTokenKey, RefreshTokenKey).Scan(&t.Access, &t.Refresh); err != nil {
		return Tokens{}, fmt.Errorf("session: pg load tokens: %w", err)
	}
	return t, nil
}

// Save implements TokenStore. An empty refresh token removes the stored one.
func (s *PGTokenStore) Save(ctx context.Context, tokens Tokens) error {
	var err error
	if tokens.Refresh == "" {
		_, err = s.db.Exec(ctx, saveAccessOnlySQL, s.scope, AccessTokenKey, tokens.Access, RefreshTokenKey)
	} else {
		_, err = s.db.Exec(ctx, saveTokensSQL, s.scope, AccessTokenKey, tokens.Access, RefreshTokenKey, tokens.Refresh)
	}
	if err != nil {
		return fmt.Errorf("session: pg save tokens: %w", err)
	}
	return nil
}

// Clear implements TokenStore.
func (s *PGTokenStore) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, clearTokensSQL, s.scope, AccessTokenKey, RefreshTokenKey); err != nil {
		return fmt.Errorf("session: pg clear tokens: %w", err)
	}
	return nil
}
