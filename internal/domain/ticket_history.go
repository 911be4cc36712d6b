package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus     TicketChangeType = "STATUS_CHANGE"
	ChangeTypePriority   TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeDueDate    TicketChangeType = "DUE_DATE_CHANGE"
	ChangeTypeAssigned   TicketChangeType = "ENGINEER_ASSIGNED"
	ChangeTypeUnassigned TicketChangeType = "ENGINEER_UNASSIGNED"
	ChangeTypeCancelled  TicketChangeType = "CANCELLED"
	ChangeTypeReopened   TicketChangeType = "REOPENED"
)

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID          string
	TicketID    string
	ChangedByID *string
	ChangeType  TicketChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}
