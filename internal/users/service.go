package users

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/ledger-console/internal/shared"
)

// ErrDeleteSelf is returned when a user tries to delete their own account.
var ErrDeleteSelf error = shared.RuleError{Message: "You cannot delete your own account."}

type usersGateway interface {
	List(ctx context.Context, token string) ([]User, error)
	Invite(ctx context.Context, token string, in Invitation) (User, error)
	Update(ctx context.Context, token, id string, in Update) (User, error)
	Delete(ctx context.Context, token, id string) error
}

// Service handles user business logic.
type Service struct {
	gateway   usersGateway
	validator *validator.Validate
}

// NewService builds Service instance.
func NewService(gateway usersGateway) *Service {
	return &Service{gateway: gateway, validator: shared.NewValidator()}
}

// List returns all users.
func (s *Service) List(ctx context.Context, token string) ([]User, error) {
	return s.gateway.List(ctx, token)
}

// Invite validates and sends an invitation.
func (s *Service) Invite(ctx context.Context, token string, in Invitation) (User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := shared.Validate(s.validator, in); err != nil {
		return User{}, err
	}
	return s.gateway.Invite(ctx, token, in)
}

// Update validates and submits changes to user id.
func (s *Service) Update(ctx context.Context, token, id string, in Update) (User, error) {
	if err := shared.Validate(s.validator, in); err != nil {
		return User{}, err
	}
	return s.gateway.Update(ctx, token, id, in)
}

// Delete removes user id unless it is the acting user.
func (s *Service) Delete(ctx context.Context, token, actorID, id string) error {
	if actorID != "" && actorID == id {
		return ErrDeleteSelf
	}
	return s.gateway.Delete(ctx, token, id)
}
