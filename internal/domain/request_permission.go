package domain

import "time"

// RequestType distinguishes what an agent is asking permission for.
type RequestType string

const (
	RequestTypeLeave       RequestType = "payed_leave"
	RequestTypeStatsUpdate RequestType = "agent_update_stats"
)

// RequestStatus is pending until a resolver approves or rejects it; both
// outcomes are terminal.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// RequestPermission is a leave or profile-update request awaiting a supervisor.
// At most one of the approved/rejected pairs is set, and only once resolved.
type RequestPermission struct {
	ID           string
	RequesterID  string
	Type         RequestType
	Status       RequestStatus
	NumberOfDays *int

	ProposedName         *string
	ProposedEmail        *string
	ProposedPasswordHash *string

	ApprovedBy *string
	ApprovedAt *time.Time
	RejectedBy *string
	RejectedAt *time.Time
	AppliedAt  *time.Time
	IssuedAt   time.Time
}

// ResolvedBy returns the identity that approved or rejected the request.
func (r *RequestPermission) ResolvedBy() *string {
	if r.ApprovedBy != nil {
		return r.ApprovedBy
	}
	return r.RejectedBy
}

// Redacted returns a copy safe to hand back to callers.
func (r *RequestPermission) Redacted() *RequestPermission {
	if r == nil {
		return nil
	}
	clone := *r
	clone.ProposedPasswordHash = nil
	return &clone
}

// SupervisorAgent pairs an agent with the supervisor who approves their requests.
type SupervisorAgent struct {
	SupervisorID string
	AgentID      string
	CreatedAt    time.Time
}
