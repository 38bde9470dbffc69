package roles

import (
	"context"
	"net/url"

	"github.com/odyssey-erp/ledger-console/internal/platform/backend"
)

// Gateway calls the /roles endpoints of the backend.
type Gateway struct {
	client *backend.Client
}

// NewGateway builds a Gateway.
func NewGateway(client *backend.Client) *Gateway {
	return &Gateway{client: client}
}

// List fetches all roles.
func (g *Gateway) List(ctx context.Context, token string) ([]Role, error) {
	var out []Role
	if err := g.client.Get(ctx, "/roles", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a new role.
func (g *Gateway) Create(ctx context.Context, token string, in Input) (Role, error) {
	var out Role
	if err := g.client.Post(ctx, "/roles", token, in, &out); err != nil {
		return Role{}, err
	}
	return out, nil
}

// Update patches a role.
func (g *Gateway) Update(ctx context.Context, token, id string, in Input) (Role, error) {
	var out Role
	if err := g.client.Patch(ctx, "/roles/"+url.PathEscape(id), token, in, &out); err != nil {
		return Role{}, err
	}
	return out, nil
}

// Delete removes a role.
func (g *Gateway) Delete(ctx context.Context, token, id string) error {
	return g.client.Delete(ctx, "/roles/"+url.PathEscape(id), token)
}
