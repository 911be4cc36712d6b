package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventDependentTicketCreated EventType = "dependent_ticket_created"
	EventTicketResolved         EventType = "ticket_resolved"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventTicketDueDateChanged   EventType = "ticket_due_date_changed"
	EventTicketCancelled        EventType = "ticket_cancelled"
	EventTicketReopened         EventType = "ticket_reopened"
	EventEngineerAssigned       EventType = "engineer_assigned"
	EventEngineerUnassigned     EventType = "engineer_unassigned"
	EventCommentAdded           EventType = "comment_added"
	EventFileAttached           EventType = "file_attached"
)

// TicketEventTypes lists every event the notification fanout listens to.
var TicketEventTypes = []EventType{
	EventTicketCreated,
	EventDependentTicketCreated,
	EventTicketResolved,
	EventTicketStatusChanged,
	EventTicketDueDateChanged,
	EventTicketCancelled,
	EventTicketReopened,
	EventEngineerAssigned,
	EventEngineerUnassigned,
	EventCommentAdded,
	EventFileAttached,
}

var eventActions = map[EventType]domain.NotificationAction{
	EventTicketCreated:          domain.ActionCreatedTicket,
	EventDependentTicketCreated: domain.ActionCreatedDependent,
	EventTicketResolved:         domain.ActionResolvedTicket,
	EventTicketStatusChanged:    domain.ActionUpdatedStatus,
	EventTicketDueDateChanged:   domain.ActionUpdatedDueDate,
	EventTicketCancelled:        domain.ActionCancelledTicket,
	EventTicketReopened:         domain.ActionReopenedTicket,
	EventEngineerAssigned:       domain.ActionAssignedEngineer,
	EventEngineerUnassigned:     domain.ActionRemovedEngineer,
	EventCommentAdded:           domain.ActionAddedComment,
	EventFileAttached:           domain.ActionAddedAttachment,
}

// Action maps an event to the notification action it produces.
func (t EventType) Action() (domain.NotificationAction, bool) {
	action, ok := eventActions[t]
	return action, ok
}

// Event represents a ticket action emitted by services after the state change
// is committed.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	CustomTicketID string      `json:"custom_ticket_id"`
	ActorID        string      `json:"actor_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload,omitempty"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// EngineersPayload lists the engineers an assignment event touched.
type EngineersPayload struct {
	EngineerIDs []string `json:"engineer_ids"`
}

// DependentPayload names the ticket the new one depends on.
type DependentPayload struct {
	ParentCustomID string `json:"parent_custom_id"`
}
