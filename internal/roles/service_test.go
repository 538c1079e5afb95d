package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novamart/novamart/internal/rbac"
)

type memoryRolesRepo struct {
	roles     map[int64]Role
	userCount map[int64]int64
	nextID    int64
}

func newMemoryRolesRepo() *memoryRolesRepo {
	return &memoryRolesRepo{
		roles:     make(map[int64]Role),
		userCount: make(map[int64]int64),
	}
}

func (r *memoryRolesRepo) Get(ctx context.Context, id int64) (Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return role, nil
}

func (r *memoryRolesRepo) GetByName(ctx context.Context, name string) (Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return Role{}, ErrNotFound
}

func (r *memoryRolesRepo) List(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *memoryRolesRepo) Create(ctx context.Context, role Role) (Role, error) {
	if _, err := r.GetByName(ctx, role.Name); err == nil {
		return Role{}, ErrDuplicateName
	}
	r.nextID++
	role.ID = r.nextID
	r.roles[role.ID] = role
	return role, nil
}

func (r *memoryRolesRepo) Update(ctx context.Context, role Role) (Role, error) {
	if _, ok := r.roles[role.ID]; !ok {
		return Role{}, ErrNotFound
	}
	r.roles[role.ID] = role
	return role, nil
}

func (r *memoryRolesRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := r.roles[id]; !ok {
		return false, nil
	}
	delete(r.roles, id)
	return true, nil
}

func (r *memoryRolesRepo) CountUsers(ctx context.Context, roleID int64) (int64, error) {
	return r.userCount[roleID], nil
}

func (r *memoryRolesRepo) Seed(ctx context.Context, role Role, reset bool) error {
	existing, err := r.GetByName(ctx, role.Name)
	if err == nil {
		if !reset {
			return nil
		}
		role.ID = existing.ID
		r.roles[role.ID] = role
		return nil
	}
	r.nextID++
	role.ID = r.nextID
	r.roles[role.ID] = role
	return nil
}

func TestBootstrapDefaultsIdempotent(t *testing.T) {
	repo := newMemoryRolesRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.BootstrapDefaults(ctx, false))
	require.Len(t, repo.roles, 3)

	// A second run leaves existing roles untouched.
	editor, err := svc.ResolveByName(ctx, RoleEditor)
	require.NoError(t, err)
	editor.Permissions[rbac.PermManageRoles] = true
	repo.roles[editor.ID] = editor

	require.NoError(t, svc.BootstrapDefaults(ctx, false))
	require.Len(t, repo.roles, 3)
	kept, err := svc.ResolveByName(ctx, RoleEditor)
	require.NoError(t, err)
	require.True(t, kept.Permissions[rbac.PermManageRoles])

	// Reset restores the fixed matrix.
	require.NoError(t, svc.BootstrapDefaults(ctx, true))
	restored, err := svc.ResolveByName(ctx, RoleEditor)
	require.NoError(t, err)
	require.False(t, restored.Permissions[rbac.PermManageRoles])
}

func TestDefaultMatrix(t *testing.T) {
	repo := newMemoryRolesRepo()
	svc := NewService(repo)
	ctx := context.Background()
	require.NoError(t, svc.BootstrapDefaults(ctx, false))

	admin, err := svc.ResolveByName(ctx, RoleAdmin)
	require.NoError(t, err)
	for _, p := range rbac.AllPermissions() {
		require.True(t, admin.Has(p), "admin must hold %s", p)
	}

	editor, err := svc.ResolveByName(ctx, RoleEditor)
	require.NoError(t, err)
	require.True(t, editor.Has(rbac.PermManageCatalog))
	require.True(t, editor.Has(rbac.PermUpdateOrderStatus))
	require.False(t, editor.Has(rbac.PermManageUsers))
	require.False(t, editor.Has(rbac.PermManageRoles))

	viewer, err := svc.ResolveByName(ctx, RoleViewer)
	require.NoError(t, err)
	require.True(t, viewer.Has(rbac.PermViewOrders))
	require.False(t, viewer.Has(rbac.PermUpdateOrderStatus))
	require.False(t, viewer.Has(rbac.PermManageCatalog))
}

func TestAdminBypassesPermissionMap(t *testing.T) {
	role := Role{Name: RoleAdmin, Permissions: map[string]bool{}, IsActive: true}
	for _, p := range rbac.AllPermissions() {
		require.True(t, role.Has(p))
	}
}

func TestHasFailsClosed(t *testing.T) {
	role := Role{Name: "custom", Permissions: map[string]bool{rbac.PermViewCatalog: true}, IsActive: true}
	require.True(t, role.Has(rbac.PermViewCatalog))
	require.False(t, role.Has(rbac.PermManageCatalog))
	require.False(t, role.Has("madeUpKey"))

	var nilPerms Role
	require.False(t, nilPerms.Has(rbac.PermViewCatalog))
}

func TestCreateRejectsUnknownPermissionKey(t *testing.T) {
	svc := NewService(newMemoryRolesRepo())
	_, err := svc.Create(context.Background(), "warehouse", "", map[string]bool{"launchMissiles": true})
	require.Error(t, err)
}

func TestDeleteProtectedRole(t *testing.T) {
	repo := newMemoryRolesRepo()
	svc := NewService(repo)
	ctx := context.Background()
	require.NoError(t, svc.BootstrapDefaults(ctx, false))

	admin, err := svc.ResolveByName(ctx, RoleAdmin)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, admin.ID), ErrProtectedRole)
}

func TestDeleteRoleInUse(t *testing.T) {
	repo := newMemoryRolesRepo()
	svc := NewService(repo)
	ctx := context.Background()

	role, err := svc.Create(ctx, "warehouse", "", map[string]bool{rbac.PermViewOrders: true})
	require.NoError(t, err)
	repo.userCount[role.ID] = 2

	require.ErrorIs(t, svc.Delete(ctx, role.ID), ErrRoleInUse)

	repo.userCount[role.ID] = 0
	require.NoError(t, svc.Delete(ctx, role.ID))
	require.ErrorIs(t, svc.Delete(ctx, role.ID), ErrNotFound)
}

func TestUpdateProtectedRename(t *testing.T) {
	repo := newMemoryRolesRepo()
	svc := NewService(repo)
	ctx := context.Background()
	require.NoError(t, svc.BootstrapDefaults(ctx, false))

	viewer, err := svc.ResolveByName(ctx, RoleViewer)
	require.NoError(t, err)

	_, err = svc.Update(ctx, viewer.ID, "spectator", "", nil, true)
	require.ErrorIs(t, err, ErrProtectedRole)

	// Permission edits on default roles stay legal.
	updated, err := svc.Update(ctx, viewer.ID, RoleViewer, "read only", map[string]bool{rbac.PermViewCatalog: true}, true)
	require.NoError(t, err)
	require.True(t, updated.Has(rbac.PermViewCatalog))
	require.False(t, updated.Has(rbac.PermViewOrders))
}
