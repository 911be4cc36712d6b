package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// LeaveRequest payload.
type LeaveRequest struct {
	NumberOfDays int `json:"number_of_days"`
}

// StatsUpdateRequest proposes new profile values.
type StatsUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// ProcessRequest resolves a pending request.
type ProcessRequest struct {
	Status domain.RequestStatus `json:"status"`
}

// RequestPermissionResponse never carries the proposed password.
type RequestPermissionResponse struct {
	ID            string               `json:"id"`
	RequesterID   string               `json:"requester_id"`
	Type          domain.RequestType   `json:"request_type"`
	Status        domain.RequestStatus `json:"status"`
	NumberOfDays  *int                 `json:"number_of_days,omitempty"`
	ProposedName  *string              `json:"proposed_name,omitempty"`
	ProposedEmail *string              `json:"proposed_email,omitempty"`
	ApprovedBy    *string              `json:"approved_by"`
	ApprovedAt    *time.Time           `json:"approved_at"`
	RejectedBy    *string              `json:"rejected_by"`
	RejectedAt    *time.Time           `json:"rejected_at"`
	AppliedAt     *time.Time           `json:"applied_at"`
	IssuedAt      time.Time            `json:"issued_at"`
}
