package domain

import (
	"errors"
	"time"
)

// User is the core user entity. Every user belongs to exactly one tenant and
// carries exactly one role; the auth core reads id, role, and status and never
// exposes PasswordHash.
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// Role represents an authorization tier within a tenant.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// ValidRoles is the closed set of roles a user account may hold.
var ValidRoles = []Role{RoleOwner, RoleAdmin, RoleMember, RoleViewer}

// IsValidRole returns true if the role is one of the closed role set.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Active reports whether the user may authenticate.
func (u *User) Active() bool {
	return u != nil && u.Status == UserStatusActive
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.TenantID == "" {
		return errors.New("tenant id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !IsValidRole(u.Role) {
		return errors.New("role is invalid")
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}
