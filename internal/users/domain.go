// Package users manages the members of the current company.
package users

import (
	"time"

	"github.com/odyssey-erp/ledger-console/internal/auth"
)

// User represents a user account for management.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      *auth.Role `json:"role,omitempty"`
	Status    string     `json:"status,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
}

// Invitation is the body of POST /users/invite.
type Invitation struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name,omitempty" validate:"max=120"`
	RoleID string `json:"roleId" validate:"required"`
}

// Update is the body of PATCH /users/{id}. Nil fields are left as is.
type Update struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=120"`
	RoleID   *string `json:"roleId,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}
