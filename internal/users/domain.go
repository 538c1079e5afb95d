package users

import (
	"errors"
	"time"
)

// User represents a principal: an authenticated actor holding exactly one role.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	RoleID       int64     `json:"role_id"`
	// Permissions is a snapshot taken when the role was assigned. It exists
	// for display and cache-invalidation hints only; authorization decisions
	// always re-resolve the live role through the role registry.
	Permissions map[string]bool `json:"permissions"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("users: email already exists")
)
