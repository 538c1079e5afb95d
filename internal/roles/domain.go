package roles

import (
	"errors"
	"time"

	"github.com/novamart/novamart/internal/rbac"
)

// Default role names seeded by BootstrapDefaults.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Role represents a named, reusable bundle of permissions.
type Role struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Permissions map[string]bool `json:"permissions"`
	IsActive    bool            `json:"is_active"`
	IsDefault   bool            `json:"is_default"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Has reports whether the role grants the permission key. The admin role is
// omnipotent and bypasses the map; everyone else fails closed on absent keys.
func (r Role) Has(perm string) bool {
	if r.Name == RoleAdmin {
		return true
	}
	return r.Permissions[perm]
}

// Enabled reports whether the role is active.
func (r Role) Enabled() bool {
	return r.IsActive
}

var (
	// ErrNotFound indicates the requested role does not exist.
	ErrNotFound = errors.New("roles: not found")
	// ErrProtectedRole indicates a default role cannot be deleted or renamed.
	ErrProtectedRole = errors.New("roles: default role is protected")
	// ErrRoleInUse indicates the role is still referenced by principals.
	ErrRoleInUse = errors.New("roles: role is referenced by users")
	// ErrDuplicateName indicates the role name is already taken.
	ErrDuplicateName = errors.New("roles: name already exists")
)

// defaultMatrix returns the seed permission sets for the default roles.
func defaultMatrix() []Role {
	editor := map[string]bool{}
	viewer := map[string]bool{}
	admin := map[string]bool{}
	for _, p := range rbac.AllPermissions() {
		admin[p] = true
		editor[p] = false
		viewer[p] = false
	}
	for _, p := range rbac.ReadOnlyPermissions() {
		viewer[p] = true
	}
	editor[rbac.PermViewCatalog] = true
	editor[rbac.PermManageCatalog] = true
	editor[rbac.PermViewOrders] = true
	editor[rbac.PermUpdateOrderStatus] = true

	return []Role{
		{Name: RoleAdmin, Description: "Full access", Permissions: admin, IsActive: true, IsDefault: true},
		{Name: RoleEditor, Description: "Catalog and order management", Permissions: editor, IsActive: true, IsDefault: true},
		{Name: RoleViewer, Description: "Read-only access", Permissions: viewer, IsActive: true, IsDefault: true},
	}
}
