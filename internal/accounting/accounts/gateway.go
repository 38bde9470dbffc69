package accounts

import (
	"context"
	"net/url"
	"strconv"

	"github.com/odyssey-erp/ledger-console/internal/platform/backend"
)

// Gateway calls the /accounts endpoints of the backend.
type Gateway struct {
	client *backend.Client
}

// NewGateway builds a Gateway.
func NewGateway(client *backend.Client) *Gateway {
	return &Gateway{client: client}
}

// List fetches the flat account list.
func (g *Gateway) List(ctx context.Context, token string, filter Filter) ([]Account, error) {
	var out []Account
	if err := g.client.Get(ctx, "/accounts", token, filter.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one account.
func (g *Gateway) Get(ctx context.Context, token, id string) (Account, error) {
	var out Account
	if err := g.client.Get(ctx, "/accounts/"+url.PathEscape(id), token, nil, &out); err != nil {
		return Account{}, err
	}
	return out, nil
}

// Tree fetches the grouped, nested account tree.
func (g *Gateway) Tree(ctx context.Context, token string) (Tree, error) {
	var out Tree
	if err := g.client.Get(ctx, "/accounts/tree", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Types fetches taxonomy metadata.
func (g *Gateway) Types(ctx context.Context, token string) ([]TypeInfo, error) {
	var out []TypeInfo
	if err := g.client.Get(ctx, "/accounts/types", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a new account.
func (g *Gateway) Create(ctx context.Context, token string, in CreateInput) (Account, error) {
	var out Account
	if err := g.client.Post(ctx, "/accounts", token, in, &out); err != nil {
		return Account{}, err
	}
	return out, nil
}

// Update patches an account.
func (g *Gateway) Update(ctx context.Context, token, id string, in UpdateInput) (Account, error) {
	var out Account
	if err := g.client.Patch(ctx, "/accounts/"+url.PathEscape(id), token, in, &out); err != nil {
		return Account{}, err
	}
	return out, nil
}

// Delete removes an account.
func (g *Gateway) Delete(ctx context.Context, token, id string) error {
	return g.client.Delete(ctx, "/accounts/"+url.PathEscape(id), token)
}

func (f Filter) query() url.Values {
	q := url.Values{}
	if f.AccountType != "" {
		q.Set("accountType", string(f.AccountType))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	return q
}
