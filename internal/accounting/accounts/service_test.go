package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
	"github.com/odyssey-erp/ledger-console/internal/shared"
)

type stubGateway struct {
	mu       sync.Mutex
	calls    []string
	accounts []Account
	tree     Tree
	types    []TypeInfo
	created  CreateInput
	updated  UpdateInput
	err      error
}

func (g *stubGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *stubGateway) List(ctx context.Context, token string, filter Filter) ([]Account, error) {
	g.record("list:" + filter.Search)
	return g.accounts, g.err
}

func (g *stubGateway) Get(ctx context.Context, token, id string) (Account, error) {
	g.record("get:" + id)
	for _, a := range g.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return Account{}, httpx.ErrNotFound
}

func (g *stubGateway) Tree(ctx context.Context, token string) (Tree, error) {
	g.record("tree")
	return g.tree, g.err
}

func (g *stubGateway) Types(ctx context.Context, token string) ([]TypeInfo, error) {
	g.record("types")
	return g.types, g.err
}

func (g *stubGateway) Create(ctx context.Context, token string, in CreateInput) (Account, error) {
	g.record("create")
	g.created = in
	return Account{ID: "new", Name: in.Name, AccountType: in.AccountType, NormalBalance: in.NormalBalance}, g.err
}

func (g *stubGateway) Update(ctx context.Context, token, id string, in UpdateInput) (Account, error) {
	g.record("update:" + id)
	g.updated = in
	return Account{ID: id, Name: "Updated"}, g.err
}

func (g *stubGateway) Delete(ctx context.Context, token, id string) error {
	g.record("delete:" + id)
	return g.err
}

func (g *stubGateway) callLog() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func TestDeleteSystemAccountMakesNoCall(t *testing.T) {
	gw := &stubGateway{}
	svc := NewService(gw)

	err := svc.Delete(context.Background(), "tok", Account{ID: "ret", IsSystemAccount: true})
	require.ErrorIs(t, err, ErrSystemAccount)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Empty(t, gw.callLog())

	alert := shared.AlertFromError(err)
	require.Equal(t, "System accounts cannot be deleted.", alert.Message)
}

func TestDeleteRegularAccount(t *testing.T) {
	gw := &stubGateway{}
	require.NoError(t, NewService(gw).Delete(context.Background(), "tok", Account{ID: "a1"}))
	require.Equal(t, []string{"delete:a1"}, gw.callLog())
}

func TestCreateValidatesAndDefaultsNormalBalance(t *testing.T) {
	gw := &stubGateway{}
	svc := NewService(gw)

	_, err := svc.Create(context.Background(), "tok", CreateInput{Name: "  ", AccountType: "Nope"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "name")
	require.Contains(t, verr.Fields, "accountType")
	require.Empty(t, gw.callLog())

	acc, err := svc.Create(context.Background(), "tok", CreateInput{Name: " Petty Cash ", AccountType: TypeBank})
	require.NoError(t, err)
	require.Equal(t, "Petty Cash", gw.created.Name)
	require.Equal(t, Debit, acc.NormalBalance)
}

func TestUpdateRejectsSelfParent(t *testing.T) {
	gw := &stubGateway{}
	self := "a1"
	_, err := NewService(gw).Update(context.Background(), "tok", "a1", UpdateInput{ParentID: &self})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, gw.callLog())

	blank := " "
	_, err = NewService(gw).Update(context.Background(), "tok", "a1", UpdateInput{Name: &blank})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestListTrimsSearch(t *testing.T) {
	gw := &stubGateway{}
	_, err := NewService(gw).List(context.Background(), "tok", Filter{Search: "  cash "})
	require.NoError(t, err)
	require.Equal(t, []string{"list:cash"}, gw.callLog())
}
