// Package accounts shapes the chart of accounts for display and forwards
// account mutations to the backend.
package accounts

import "github.com/shopspring/decimal"

// Account is one ledger account as returned by GET /accounts.
type Account struct {
	ID              string          `json:"id"`
	AccountNumber   string          `json:"accountNumber,omitempty"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	DetailType      string          `json:"detailType,omitempty"`
	NormalBalance   NormalBalance   `json:"normalBalance,omitempty"`
	ParentID        *string         `json:"parentId,omitempty"`
	Depth           int             `json:"depth"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	Description     string          `json:"description,omitempty"`
	IsSystemAccount bool            `json:"isSystemAccount"`
	IsActive        bool            `json:"isActive"`
	SubAccountCount int             `json:"subAccountCount"`
}

// TreeNode is an account shaped for hierarchical display.
type TreeNode struct {
	ID              string          `json:"id"`
	AccountNumber   string          `json:"accountNumber,omitempty"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	Depth           int             `json:"depth"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	IsSystemAccount bool            `json:"isSystemAccount"`
	IsActive        bool            `json:"isActive"`
	Children        []TreeNode      `json:"children"`
}

// Tree maps a group name to its root nodes, as returned by GET /accounts/tree.
type Tree map[Group][]TreeNode

// TypeInfo describes one account type, as returned by GET /accounts/types.
type TypeInfo struct {
	AccountType   AccountType   `json:"accountType"`
	Group         Group         `json:"group"`
	NormalBalance NormalBalance `json:"normalBalance"`
	DetailTypes   []string      `json:"detailTypes,omitempty"`
}

// Filter narrows GET /accounts.
type Filter struct {
	AccountType AccountType
	Search      string
	IsActive    *bool
}

// CreateInput is the body of POST /accounts.
type CreateInput struct {
	AccountNumber  string           `json:"accountNumber,omitempty" validate:"omitempty,max=20"`
	Name           string           `json:"name" validate:"required,max=120"`
	AccountType    AccountType      `json:"accountType" validate:"required,account_type"`
	DetailType     string           `json:"detailType,omitempty" validate:"max=120"`
	NormalBalance  NormalBalance    `json:"normalBalance,omitempty" validate:"omitempty,oneof=DEBIT CREDIT"`
	ParentID       *string          `json:"parentId,omitempty"`
	OpeningBalance *decimal.Decimal `json:"openingBalance,omitempty"`
	Description    string           `json:"description,omitempty" validate:"max=500"`
}

// UpdateInput is the body of PATCH /accounts/{id}. Nil fields are left as is.
type UpdateInput struct {
	AccountNumber *string `json:"accountNumber,omitempty" validate:"omitempty,max=20"`
	Name          *string `json:"name,omitempty" validate:"omitempty,max=120"`
	DetailType    *string `json:"detailType,omitempty" validate:"omitempty,max=120"`
	ParentID      *string `json:"parentId,omitempty"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsActive      *bool   `json:"isActive,omitempty"`
}
