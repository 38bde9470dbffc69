package roles

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/ledger-console/internal/platform/httpx"
	"github.com/odyssey-erp/ledger-console/internal/shared"
)

// ErrPrimaryAdminRole is returned when deleting the primary admin role.
var ErrPrimaryAdminRole error = shared.RuleError{Message: "The primary admin role cannot be deleted."}

type rolesGateway interface {
	List(ctx context.Context, token string) ([]Role, error)
	Create(ctx context.Context, token string, in Input) (Role, error)
	Update(ctx context.Context, token, id string, in Input) (Role, error)
	Delete(ctx context.Context, token, id string) error
}

// Service handles role business logic.
type Service struct {
	gateway   rolesGateway
	validator *validator.Validate
}

// NewService builds Service instance.
func NewService(gateway rolesGateway) *Service {
	return &Service{gateway: gateway, validator: shared.NewValidator()}
}

// List returns all roles.
func (s *Service) List(ctx context.Context, token string) ([]Role, error) {
	return s.gateway.List(ctx, token)
}

// Catalog lists the permission codes the console knows how to gate.
func (s *Service) Catalog() []string {
	codes := append(shared.CoreScopes(), shared.AccountingScopes()...)
	sort.Strings(codes)
	return codes
}

// Create validates and submits a new role.
func (s *Service) Create(ctx context.Context, token string, in Input) (Role, error) {
	in = normalize(in)
	if err := shared.Validate(s.validator, in); err != nil {
		return Role{}, err
	}
	return s.gateway.Create(ctx, token, in)
}

// Update validates and submits changes to role id.
func (s *Service) Update(ctx context.Context, token, id string, in Input) (Role, error) {
	in = normalize(in)
	if err := shared.Validate(s.validator, in); err != nil {
		return Role{}, err
	}
	return s.gateway.Update(ctx, token, id, in)
}

// Delete removes role id. The primary admin role is rejected before the
// delete request is sent.
func (s *Service) Delete(ctx context.Context, token, id string) error {
	roles, err := s.gateway.List(ctx, token)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if role.ID != id {
			continue
		}
		if role.IsPrimaryAdmin() {
			return ErrPrimaryAdminRole
		}
		return s.gateway.Delete(ctx, token, id)
	}
	return fmt.Errorf("role %s: %w", id, httpx.ErrNotFound)
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	seen := make(map[string]struct{}, len(in.Permissions))
	perms := make([]string, 0, len(in.Permissions))
	for _, p := range in.Permissions {
		p = strings.TrimSpace(p)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		perms = append(perms, p)
	}
	in.Permissions = perms
	return in
}
