package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// Valid reports whether s is one of the allowed ticket statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// Rank orders statuses along the lifecycle.
func (s TicketStatus) Rank() int {
	switch s {
	case TicketStatusPending:
		return 0
	case TicketStatusInProgress:
		return 1
	case TicketStatusResolved:
		return 2
	}
	return -1
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketPriorities lists priorities from least to most urgent.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	return p.Rank() >= 0
}

// Rank orders priorities by urgency.
func (p TicketPriority) Rank() int {
	for i, candidate := range TicketPriorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Ticket is the aggregate for support requests. CustomTicketID is the
// human-facing identifier and never changes once assigned. A non-nil
// CancelledDate excludes the ticket from active listings.
type Ticket struct {
	ID             string
	CustomTicketID string
	CustomerID     string
	CreatedBy      string
	CategoryID     string
	Issue          string
	Priority       TicketPriority
	Status         TicketStatus
	DueDate        *time.Time
	CancelledDate  *time.Time
	ReOpenedDate   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsCancelled reports whether the ticket is soft-deleted.
func (t *Ticket) IsCancelled() bool {
	return t.CancelledDate != nil
}

// Assignment is an active pairing of a ticket and an engineer.
type Assignment struct {
	TicketID   string
	EngineerID string
	CreatedAt  time.Time
}

// DependentTicket is a directed edge: Child depends on Parent.
type DependentTicket struct {
	ID             string
	ParentCustomID string
	ChildCustomID  string
	CreatedAt      time.Time
}

// TicketComment is a free-text note on a ticket.
type TicketComment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TicketFile references an already uploaded file by its public URL.
type TicketFile struct {
	ID        string
	TicketID  string
	URL       string
	CreatedAt time.Time
}
