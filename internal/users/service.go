package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/novamart/novamart/internal/roles"
	"github.com/novamart/novamart/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user User) (User, error)
	SetRole(ctx context.Context, userID, roleID int64, snapshot map[string]bool) error
}

// RoleResolver resolves roles when deriving permission snapshots.
type RoleResolver interface {
	Resolve(ctx context.Context, id int64) (roles.Role, error)
}

// Service handles principal business logic.
type Service struct {
	repo     RepositoryPort
	registry RoleResolver
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, registry RoleResolver) *Service {
	return &Service{repo: repo, registry: registry}
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// GetByEmail fetches a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Create registers a principal with exactly one role. The permission snapshot
// is derived from the role at creation time.
func (s *Service) Create(ctx context.Context, email, name, password string, roleID int64) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return User{}, errors.New("users: email required")
	}
	if len(password) < 8 {
		return User{}, errors.New("users: password must be at least 8 characters")
	}
	role, err := s.registry.Resolve(ctx, roleID)
	if err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		RoleID:       role.ID,
		Permissions:  snapshotPermissions(role),
		IsActive:     true,
	})
}

// AssignRole moves the user to a new role and refreshes the snapshot.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) (User, error) {
	role, err := s.registry.Resolve(ctx, roleID)
	if err != nil {
		return User{}, err
	}
	if err := s.repo.SetRole(ctx, userID, role.ID, snapshotPermissions(role)); err != nil {
		return User{}, err
	}
	return s.repo.Get(ctx, userID)
}

// Authenticate validates email/password credentials. Every failure mode
// collapses into ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

func snapshotPermissions(role roles.Role) map[string]bool {
	snapshot := make(map[string]bool, len(role.Permissions))
	for key, granted := range role.Permissions {
		snapshot[key] = granted
	}
	return snapshot
}
