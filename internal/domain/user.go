package domain

import "time"

// Role tags an identity with its helpdesk responsibilities.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleAgent      Role = "agent"
	RoleEngineer   Role = "engineer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleAgent, RoleEngineer:
		return true
	}
	return false
}

// User is the single identity model for agents, supervisors, engineers and admins.
// CategoryID is only set for engineers and names their qualification category.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CategoryID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsEngineer reports whether the user is routed tickets by category.
func (u *User) IsEngineer() bool {
	return u != nil && u.Role == RoleEngineer
}
