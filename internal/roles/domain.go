// Package roles manages the company's roles and their permission codes.
package roles

// PrimaryAdminCode identifies the role that bypasses permission checks.
const PrimaryAdminCode = "PRIMARY_ADMIN"

// Role represents a role for management.
type Role struct {
	ID          string   `json:"id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
	UserCount   int      `json:"userCount"`
}

// IsPrimaryAdmin reports whether r is the primary admin role.
func (r Role) IsPrimaryAdmin() bool {
	return r.Code == PrimaryAdminCode
}

// Input is the body of POST /roles and PATCH /roles/{id}.
type Input struct {
	Name        string   `json:"name" validate:"required,max=80"`
	Description string   `json:"description,omitempty" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}
