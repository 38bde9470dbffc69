package shared

// Core platform permissions.
const (
	PermUserView   = "user:view"
	PermUserInvite = "user:invite"
	PermUserEdit   = "user:edit"
	PermUserDelete = "user:delete"

	PermRoleView = "role:view"
	PermRoleEdit = "role:edit"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermUserView,
		PermUserInvite,
		PermUserEdit,
		PermUserDelete,
		PermRoleView,
		PermRoleEdit,
	}
}
