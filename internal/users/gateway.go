package users

import (
	"context"
	"net/url"

	"github.com/odyssey-erp/ledger-console/internal/platform/backend"
)

// Gateway calls the /users endpoints of the backend.
type Gateway struct {
	client *backend.Client
}

// NewGateway builds a Gateway.
func NewGateway(client *backend.Client) *Gateway {
	return &Gateway{client: client}
}

// List fetches the company's users.
func (g *Gateway) List(ctx context.Context, token string) ([]User, error) {
	var out []User
	if err := g.client.Get(ctx, "/users", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Invite sends an invitation.
func (g *Gateway) Invite(ctx context.Context, token string, in Invitation) (User, error) {
	var out User
	if err := g.client.Post(ctx, "/users/invite", token, in, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// Update patches a user.
func (g *Gateway) Update(ctx context.Context, token, id string, in Update) (User, error) {
	var out User
	if err := g.client.Patch(ctx, "/users/"+url.PathEscape(id), token, in, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// Delete removes a user.
func (g *Gateway) Delete(ctx context.Context, token, id string) error {
	return g.client.Delete(ctx, "/users/"+url.PathEscape(id), token)
}
