package shared

// Chart of accounts permissions.
const (
	PermAccountView   = "account:view"
	PermAccountCreate = "account:create"
	PermAccountEdit   = "account:edit"
	PermAccountDelete = "account:delete"
)

// AccountingScopes lists all permissions related to the chart of accounts.
func AccountingScopes() []string {
	return []string{
		PermAccountView,
		PermAccountCreate,
		PermAccountEdit,
		PermAccountDelete,
	}
}
