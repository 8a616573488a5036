package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered author or admin.
type User struct {
	ID           string
	Name         string
	Email        string // always stored lowercased
	PasswordHash string
	Role         Role
	Image        string
	Bio          string
	Location     string
	Website      string
	Twitter      string
	GitHub       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// UpdateProfile persists the name and optional profile fields.
	UpdateProfile(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, id string, role Role) error
}
