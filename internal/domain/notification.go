package domain

import "time"

// NotificationAction names what happened to a ticket.
type NotificationAction string

const (
	ActionCreatedTicket     NotificationAction = "CREATED_TICKET"
	ActionResolvedTicket    NotificationAction = "RESOLVED_TICKET"
	ActionCancelledTicket   NotificationAction = "CANCELLED_TICKET"
	ActionReopenedTicket    NotificationAction = "REOPENED_TICKET"
	ActionUpdatedCategory   NotificationAction = "UPDATED_CATEGORY"
	ActionUpdatedStatus     NotificationAction = "UPDATED_STATUS"
	ActionAddedComment      NotificationAction = "ADDED_COMMENT"
	ActionCreatedDependent  NotificationAction = "CREATED_DEPENDENT_TICKET"
	ActionAssignedEngineer  NotificationAction = "ASSIGNED_ENGINEER"
	ActionRemovedEngineer   NotificationAction = "REMOVED_ENGINEER"
	ActionUpdatedDueDate    NotificationAction = "UPDATED_DUE_DATE"
	ActionAddedAttachment   NotificationAction = "ADDED_ATTACHMENT"
	ActionUpdatedAttachment NotificationAction = "UPDATED_ATTACHMENT"
	ActionRemovedAttachment NotificationAction = "REMOVED_ATTACHMENT"
)

var actionPhrases = map[NotificationAction]string{
	ActionCreatedTicket:     "created a ticket",
	ActionResolvedTicket:    "resolved the ticket",
	ActionCancelledTicket:   "cancelled the ticket",
	ActionReopenedTicket:    "reopened the ticket",
	ActionUpdatedCategory:   "updated the category of",
	ActionUpdatedStatus:     "updated the status of",
	ActionAddedComment:      "added a comment to",
	ActionCreatedDependent:  "created a ticket dependent on",
	ActionAssignedEngineer:  "has assigned an engineer to",
	ActionRemovedEngineer:   "removed the assigned engineer from",
	ActionUpdatedDueDate:    "updated the due date of",
	ActionAddedAttachment:   "added an attachment to",
	ActionUpdatedAttachment: "updated an attachment on",
	ActionRemovedAttachment: "removed an attachment from",
}

// Phrase renders the action as the verb phrase used in notification text.
func (a NotificationAction) Phrase() string {
	if phrase, ok := actionPhrases[a]; ok {
		return phrase
	}
	return "updated"
}

// Notification is a per-recipient record of a ticket action.
type Notification struct {
	ID             string
	UserID         string
	ActorID        string
	Action         NotificationAction
	CustomTicketID string
	Message        string
	Own            bool
	Read           bool
	CreatedAt      time.Time
}
