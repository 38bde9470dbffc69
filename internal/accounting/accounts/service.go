package accounts

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/ledger-console/internal/shared"
)

type accountsGateway interface {
	List(ctx context.Context, token string, filter Filter) ([]Account, error)
	Get(ctx context.Context, token, id string) (Account, error)
	Tree(ctx context.Context, token string) (Tree, error)
	Types(ctx context.Context, token string) ([]TypeInfo, error)
	Create(ctx context.Context, token string, in CreateInput) (Account, error)
	Update(ctx context.Context, token, id string, in UpdateInput) (Account, error)
	Delete(ctx context.Context, token, id string) error
}

// ErrSystemAccount is returned when deleting a system account.
var ErrSystemAccount error = shared.RuleError{Message: "System accounts cannot be deleted."}

// Service applies client-side rules before calling the backend.
type Service struct {
	gateway   accountsGateway
	validator *validator.Validate
}

// NewService builds a Service.
func NewService(gateway accountsGateway) *Service {
	v := shared.NewValidator()
	_ = v.RegisterValidation("account_type", func(fl validator.FieldLevel) bool {
		return KnownType(AccountType(fl.Field().String()))
	})
	return &Service{gateway: gateway, validator: v}
}

// List returns accounts matching filter.
func (s *Service) List(ctx context.Context, token string, filter Filter) ([]Account, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.gateway.List(ctx, token, filter)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, token, id string) (Account, error) {
	return s.gateway.Get(ctx, token, id)
}

// Tree returns the backend's nested tree unchanged.
func (s *Service) Tree(ctx context.Context, token string) (Tree, error) {
	return s.gateway.Tree(ctx, token)
}

// Types returns taxonomy metadata.
func (s *Service) Types(ctx context.Context, token string) ([]TypeInfo, error) {
	return s.gateway.Types(ctx, token)
}

// Create validates and submits a new account. The normal balance defaults
// from the account type.
func (s *Service) Create(ctx context.Context, token string, in CreateInput) (Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if err := shared.Validate(s.validator, in); err != nil {
		return Account{}, err
	}
	if in.NormalBalance == "" {
		in.NormalBalance = DefaultNormalBalance(in.AccountType)
	}
	return s.gateway.Create(ctx, token, in)
}

// Update validates and submits changes to account id.
func (s *Service) Update(ctx context.Context, token, id string, in UpdateInput) (Account, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Account{}, shared.Invalid("name", "is required")
		}
		in.Name = &name
	}
	if err := shared.Validate(s.validator, in); err != nil {
		return Account{}, err
	}
	if in.ParentID != nil && *in.ParentID == id {
		return Account{}, shared.Invalid("parentId", "cannot be the account itself")
	}
	return s.gateway.Update(ctx, token, id, in)
}

// Delete removes acc. System accounts are rejected without calling the backend.
func (s *Service) Delete(ctx context.Context, token string, acc Account) error {
	if acc.IsSystemAccount {
		return ErrSystemAccount
	}
	return s.gateway.Delete(ctx, token, acc.ID)
}
