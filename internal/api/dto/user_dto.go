package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an identity.
type UserResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	CategoryID *string     `json:"category_id,omitempty"`
}

// AssignSupervisorRequest pairs an agent with a supervisor.
type AssignSupervisorRequest struct {
	SupervisorID string `json:"supervisor_id"`
	AgentID      string `json:"agent_id"`
}

// SupervisorPairingResponse confirms a pairing.
type SupervisorPairingResponse struct {
	SupervisorID string    `json:"supervisor_id"`
	AgentID      string    `json:"agent_id"`
	CreatedAt    time.Time `json:"created_at"`
}
