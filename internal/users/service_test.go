package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novamart/novamart/internal/rbac"
	"github.com/novamart/novamart/internal/roles"
	"github.com/novamart/novamart/internal/shared"
)

type memoryUsersRepo struct {
	users  map[int64]User
	nextID int64
}

func newMemoryUsersRepo() *memoryUsersRepo {
	return &memoryUsersRepo{users: make(map[int64]User)}
}

func (r *memoryUsersRepo) Get(ctx context.Context, id int64) (User, error) {
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryUsersRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryUsersRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *memoryUsersRepo) Create(ctx context.Context, user User) (User, error) {
	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return User{}, ErrDuplicateEmail
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryUsersRepo) SetRole(ctx context.Context, userID, roleID int64, snapshot map[string]bool) error {
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.RoleID = roleID
	user.Permissions = snapshot
	r.users[userID] = user
	return nil
}

type staticResolver struct {
	roles map[int64]roles.Role
}

func (r staticResolver) Resolve(ctx context.Context, id int64) (roles.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return roles.Role{}, roles.ErrNotFound
	}
	return role, nil
}

func testResolver() staticResolver {
	return staticResolver{roles: map[int64]roles.Role{
		1: {ID: 1, Name: roles.RoleViewer, IsActive: true, Permissions: map[string]bool{
			rbac.PermViewCatalog: true,
			rbac.PermViewOrders:  true,
		}},
		2: {ID: 2, Name: roles.RoleEditor, IsActive: true, Permissions: map[string]bool{
			rbac.PermViewCatalog:       true,
			rbac.PermManageCatalog:     true,
			rbac.PermViewOrders:        true,
			rbac.PermUpdateOrderStatus: true,
		}},
	}}
}

func TestCreateHashesPasswordAndSnapshots(t *testing.T) {
	svc := NewService(newMemoryUsersRepo(), testResolver())
	ctx := context.Background()

	user, err := svc.Create(ctx, "  Ada@Example.COM ", "Ada", "correct-horse", 1)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
	require.NotEqual(t, "correct-horse", user.PasswordHash)
	require.NotEmpty(t, user.PasswordHash)
	require.True(t, user.Permissions[rbac.PermViewCatalog])
	require.False(t, user.Permissions[rbac.PermManageCatalog])

	_, err = svc.Create(ctx, "ada@example.com", "Ada", "short", 1)
	require.Error(t, err)

	_, err = svc.Create(ctx, "other@example.com", "Other", "correct-horse", 42)
	require.ErrorIs(t, err, roles.ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newMemoryUsersRepo(), testResolver())
	ctx := context.Background()

	created, err := svc.Create(ctx, "ada@example.com", "Ada", "correct-horse", 1)
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAssignRoleRefreshesSnapshot(t *testing.T) {
	repo := newMemoryUsersRepo()
	svc := NewService(repo, testResolver())
	ctx := context.Background()

	user, err := svc.Create(ctx, "ada@example.com", "Ada", "correct-horse", 1)
	require.NoError(t, err)
	require.False(t, user.Permissions[rbac.PermUpdateOrderStatus])

	promoted, err := svc.AssignRole(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), promoted.RoleID)
	require.True(t, promoted.Permissions[rbac.PermUpdateOrderStatus])
}
