package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novamart/novamart/internal/shared"
)

type stubRole struct {
	perms  map[string]bool
	active bool
}

func (r stubRole) Has(perm string) bool { return r.perms[perm] }
func (r stubRole) Enabled() bool        { return r.active }

func stubRegistry(roles map[int64]stubRole) Registry {
	return RegistryFunc(func(ctx context.Context, roleID int64) (RoleView, error) {
		role, ok := roles[roleID]
		if !ok {
			return nil, errors.New("role missing")
		}
		return role, nil
	})
}

func TestAuthorizeGrantedAndDenied(t *testing.T) {
	gate := NewGate(stubRegistry(map[int64]stubRole{
		1: {perms: map[string]bool{PermViewOrders: true}, active: true},
	}))
	principal := &shared.Principal{ID: 10, RoleID: 1}

	require.NoError(t, gate.Authorize(context.Background(), principal, PermViewOrders))

	err := gate.Authorize(context.Background(), principal, PermManageRoles)
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, PermManageRoles, denied.Permission)
}

func TestAuthorizeFailsClosedOnAbsentKey(t *testing.T) {
	// The role map simply lacks the key; absence must read as false.
	gate := NewGate(stubRegistry(map[int64]stubRole{
		1: {perms: map[string]bool{}, active: true},
	}))
	principal := &shared.Principal{ID: 10, RoleID: 1}

	for _, perm := range AllPermissions() {
		var denied *DeniedError
		require.ErrorAs(t, gate.Authorize(context.Background(), principal, perm), &denied)
	}
}

func TestAuthorizeNilPrincipal(t *testing.T) {
	gate := NewGate(stubRegistry(nil))
	var denied *DeniedError
	require.ErrorAs(t, gate.Authorize(context.Background(), nil, PermViewOrders), &denied)
	require.ErrorAs(t, gate.AuthorizeAny(context.Background(), nil, PermViewOrders, PermViewUsers), &denied)
	require.ErrorAs(t, gate.AuthorizeAll(context.Background(), nil, PermViewOrders), &denied)
}

func TestAuthorizeInactiveRole(t *testing.T) {
	gate := NewGate(stubRegistry(map[int64]stubRole{
		1: {perms: map[string]bool{PermViewOrders: true}, active: false},
	}))
	principal := &shared.Principal{ID: 10, RoleID: 1}

	var denied *DeniedError
	require.ErrorAs(t, gate.Authorize(context.Background(), principal, PermViewOrders), &denied)
}

func TestAuthorizeAny(t *testing.T) {
	gate := NewGate(stubRegistry(map[int64]stubRole{
		1: {perms: map[string]bool{PermViewUsers: true}, active: true},
	}))
	principal := &shared.Principal{ID: 10, RoleID: 1}

	require.NoError(t, gate.AuthorizeAny(context.Background(), principal, PermManageUsers, PermViewUsers))

	var denied *DeniedError
	require.ErrorAs(t, gate.AuthorizeAny(context.Background(), principal, PermManageUsers, PermManageRoles), &denied)
}

func TestAuthorizeAll(t *testing.T) {
	gate := NewGate(stubRegistry(map[int64]stubRole{
		1: {perms: map[string]bool{PermViewCatalog: true, PermManageCatalog: true}, active: true},
	}))
	principal := &shared.Principal{ID: 10, RoleID: 1}

	require.NoError(t, gate.AuthorizeAll(context.Background(), principal, PermViewCatalog, PermManageCatalog))

	err := gate.AuthorizeAll(context.Background(), principal, PermViewCatalog, PermManageRoles)
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, PermManageRoles, denied.Permission)
}

func TestAuthorizeRegistryError(t *testing.T) {
	gate := NewGate(stubRegistry(map[int64]stubRole{}))
	principal := &shared.Principal{ID: 10, RoleID: 99}

	err := gate.Authorize(context.Background(), principal, PermViewOrders)
	require.Error(t, err)
	var denied *DeniedError
	require.False(t, errors.As(err, &denied), "registry failures are not permission denials")
}
