// Package rbac implements the permission gate that authorizes every mutation.
package rbac

import (
	"context"
	"fmt"

	"github.com/novamart/novamart/internal/shared"
)

// RoleView is the registry's answer to a role lookup.
type RoleView interface {
	// Has reports whether the role grants the permission key.
	Has(perm string) bool
	// Enabled reports whether the role is active.
	Enabled() bool
}

// Registry resolves the current role for a principal. The gate always asks
// the registry; it never consults the permission snapshot stored on the
// principal record, so revoking a permission takes effect on the next request.
type Registry interface {
	ResolveRole(ctx context.Context, roleID int64) (RoleView, error)
}

// RegistryFunc adapts a resolve function to the Registry interface.
type RegistryFunc func(ctx context.Context, roleID int64) (RoleView, error)

// ResolveRole implements Registry.
func (f RegistryFunc) ResolveRole(ctx context.Context, roleID int64) (RoleView, error) {
	return f(ctx, roleID)
}

// DeniedError reports a failed authorization and the permission that was missing.
type DeniedError struct {
	Permission string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("rbac: permission denied: missing %s", e.Permission)
}

// Gate makes allow/deny decisions. It is a pure decision function; logging
// denials is the caller's concern.
type Gate struct {
	registry Registry
}

// NewGate constructs a Gate backed by the given registry.
func NewGate(registry Registry) *Gate {
	return &Gate{registry: registry}
}

// Authorize allows the request when the principal's current role grants perm.
func (g *Gate) Authorize(ctx context.Context, principal *shared.Principal, perm string) error {
	if principal == nil {
		return &DeniedError{Permission: perm}
	}
	role, err := g.registry.ResolveRole(ctx, principal.RoleID)
	if err != nil {
		return err
	}
	if !role.Enabled() || !role.Has(perm) {
		return &DeniedError{Permission: perm}
	}
	return nil
}

// AuthorizeAny succeeds when at least one permission is granted.
func (g *Gate) AuthorizeAny(ctx context.Context, principal *shared.Principal, perms ...string) error {
	if len(perms) == 0 {
		return nil
	}
	if principal == nil {
		return &DeniedError{Permission: perms[0]}
	}
	role, err := g.registry.ResolveRole(ctx, principal.RoleID)
	if err != nil {
		return err
	}
	if !role.Enabled() {
		return &DeniedError{Permission: perms[0]}
	}
	for _, p := range perms {
		if role.Has(p) {
			return nil
		}
	}
	return &DeniedError{Permission: perms[0]}
}

// AuthorizeAll succeeds only when every permission is granted.
func (g *Gate) AuthorizeAll(ctx context.Context, principal *shared.Principal, perms ...string) error {
	if len(perms) == 0 {
		return nil
	}
	if principal == nil {
		return &DeniedError{Permission: perms[0]}
	}
	role, err := g.registry.ResolveRole(ctx, principal.RoleID)
	if err != nil {
		return err
	}
	if !role.Enabled() {
		return &DeniedError{Permission: perms[0]}
	}
	for _, p := range perms {
		if !role.Has(p) {
			return &DeniedError{Permission: p}
		}
	}
	return nil
}
