package auth

import (
	"context"
	"errors"
	"net/url"

	"github.com/odyssey-erp/ledger-console/internal/platform/backend"
)

// ErrMissingToken is returned when the backend answers a login without tokens.
var ErrMissingToken = errors.New("auth: backend returned no access token")

// Gateway calls the /auth endpoints of the backend.
type Gateway struct {
	client *backend.Client
}

// NewGateway builds a Gateway.
func NewGateway(client *backend.Client) *Gateway {
	return &Gateway{client: client}
}

// Login exchanges credentials for tokens and the user identity.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (Result, error) {
	var res Result
	if err := g.client.Post(ctx, "/auth/login", "", creds, &res); err != nil {
		return Result{}, err
	}
	if res.AccessToken == "" {
		return Result{}, ErrMissingToken
	}
	return res, nil
}

// Register creates an account and returns tokens like Login.
func (g *Gateway) Register(ctx context.Context, profile Profile) (Result, error) {
	var res Result
	if err := g.client.Post(ctx, "/auth/register", "", profile, &res); err != nil {
		return Result{}, err
	}
	if res.AccessToken == "" {
		return Result{}, ErrMissingToken
	}
	return res, nil
}

// Me resolves the identity behind token.
func (g *Gateway) Me(ctx context.Context, token string) (Identity, error) {
	var id Identity
	if err := g.client.Get(ctx, "/auth/me", token, nil, &id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// MyPermissions fetches the permission set of the token's user.
func (g *Gateway) MyPermissions(ctx context.Context, token string) (PermissionSet, error) {
	var set PermissionSet
	if err := g.client.Get(ctx, "/auth/my-permissions", token, nil, &set); err != nil {
		return PermissionSet{}, err
	}
	return set, nil
}

// ForgotPassword asks the backend to send a reset link.
func (g *Gateway) ForgotPassword(ctx context.Context, email string) error {
	return g.client.Post(ctx, "/auth/forgot-password", "", map[string]string{"email": email}, nil)
}

// ValidateResetToken checks a reset token before showing the reset form.
func (g *Gateway) ValidateResetToken(ctx context.Context, token string) error {
	return g.client.Get(ctx, "/auth/validate-reset-token", "", url.Values{"token": {token}}, nil)
}

// ResetPassword sets a new password using a reset token.
func (g *Gateway) ResetPassword(ctx context.Context, reset PasswordReset) error {
	return g.client.Post(ctx, "/auth/reset-password", "", reset, nil)
}
