package rbac

// Permission keys form a fixed vocabulary. Role permission maps are keyed by
// these values; an absent key reads as false.
const (
	PermViewCatalog       = "viewCatalog"
	PermManageCatalog     = "manageCatalog"
	PermViewOrders        = "viewOrders"
	PermUpdateOrderStatus = "updateOrderStatus"
	PermViewUsers         = "viewUsers"
	PermManageUsers       = "manageUsers"
	PermManageRoles       = "manageRoles"
)

// AllPermissions lists every known permission key.
func AllPermissions() []string {
	return []string{
		PermViewCatalog,
		PermManageCatalog,
		PermViewOrders,
		PermUpdateOrderStatus,
		PermViewUsers,
		PermManageUsers,
		PermManageRoles,
	}
}

// ReadOnlyPermissions lists the keys that never mutate state.
func ReadOnlyPermissions() []string {
	return []string{PermViewCatalog, PermViewOrders, PermViewUsers}
}
