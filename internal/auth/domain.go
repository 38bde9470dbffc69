// Package auth holds the identity types exchanged with the auth backend and
// the gateway that calls it.
package auth

// Credentials are submitted on login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Profile is submitted on registration.
type Profile struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyName string `json:"companyName" validate:"required,max=160"`
}

// Company is the tenant the user belongs to.
type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency,omitempty"`
}

// Role describes the user's role.
type Role struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Identity is the resolved user behind an access token.
type Identity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Company     *Company `json:"company,omitempty"`
	Role        *Role    `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Result is returned by login and registration.
type Result struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         Identity `json:"user"`
}

// PermissionSet is the authorization state returned by /auth/my-permissions.
// It is also the payload of the short-lived permission cache.
type PermissionSet struct {
	Permissions    []string `json:"permissions"`
	IsPrimaryAdmin bool     `json:"isPrimaryAdmin"`
	Role           *Role    `json:"role,omitempty"`
}

// PasswordReset completes the forgot-password flow.
type PasswordReset struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}
