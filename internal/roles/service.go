package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/novamart/novamart/internal/rbac"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Role, error)
	GetByName(ctx context.Context, name string) (Role, error)
	List(ctx context.Context) ([]Role, error)
	Create(ctx context.Context, role Role) (Role, error)
	Update(ctx context.Context, role Role) (Role, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CountUsers(ctx context.Context, roleID int64) (int64, error)
	Seed(ctx context.Context, role Role, reset bool) error
}

// Service is the role registry: the single source of truth for permission
// decisions. The permission gate resolves roles through it on every request.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Resolve fetches a role by ID.
func (s *Service) Resolve(ctx context.Context, id int64) (Role, error) {
	return s.repo.Get(ctx, id)
}

// ResolveByName fetches a role by its unique name.
func (s *Service) ResolveByName(ctx context.Context, name string) (Role, error) {
	return s.repo.GetByName(ctx, strings.TrimSpace(name))
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Create inserts a custom role. Unknown permission keys are rejected.
func (s *Service) Create(ctx context.Context, name, description string, permissions map[string]bool) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("roles: name required")
	}
	if err := validatePermissions(permissions); err != nil {
		return Role{}, err
	}
	if permissions == nil {
		permissions = map[string]bool{}
	}
	return s.repo.Create(ctx, Role{
		Name:        name,
		Description: strings.TrimSpace(description),
		Permissions: permissions,
		IsActive:    true,
	})
}

// Update edits an existing role. Default roles keep their name.
func (s *Service) Update(ctx context.Context, id int64, name, description string, permissions map[string]bool, isActive bool) (Role, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Role{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = existing.Name
	}
	if existing.IsDefault && name != existing.Name {
		return Role{}, ErrProtectedRole
	}
	if err := validatePermissions(permissions); err != nil {
		return Role{}, err
	}
	if permissions == nil {
		permissions = existing.Permissions
	}
	existing.Name = name
	existing.Description = strings.TrimSpace(description)
	existing.Permissions = permissions
	existing.IsActive = isActive
	return s.repo.Update(ctx, existing)
}

// Delete removes a role unless it is a default role or still referenced.
func (s *Service) Delete(ctx context.Context, id int64) error {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if role.IsDefault {
		return ErrProtectedRole
	}
	inUse, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return ErrRoleInUse
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// BootstrapDefaults idempotently ensures admin, editor and viewer exist with
// the fixed permission matrix. Existing roles are left untouched unless the
// caller explicitly requests a reset.
func (s *Service) BootstrapDefaults(ctx context.Context, reset bool) error {
	for _, role := range defaultMatrix() {
		if err := s.repo.Seed(ctx, role, reset); err != nil {
			return err
		}
	}
	return nil
}

func validatePermissions(perms map[string]bool) error {
	if perms == nil {
		return nil
	}
	known := map[string]struct{}{}
	for _, p := range rbac.AllPermissions() {
		known[p] = struct{}{}
	}
	for key := range perms {
		if _, ok := known[key]; !ok {
			return errors.New("roles: unknown permission key: " + key)
		}
	}
	return nil
}
