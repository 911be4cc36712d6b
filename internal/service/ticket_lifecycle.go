package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// CommentInput creates a comment when ID is empty and edits it otherwise.
type CommentInput struct {
	ID      string
	Content string
}

// UpdateTicketInput carries the optional fields of a status/priority update.
type UpdateTicketInput struct {
	CustomTicketID string
	Status         *domain.TicketStatus
	Priority       *domain.TicketPriority
	DueDate        *time.Time
	Comments       []CommentInput
}

// CancelResult is returned by CancelTicket.
type CancelResult struct {
	CustomTicketID string    `json:"custom_ticket_id"`
	CancelledDate  time.Time `json:"cancelled_date"`
}

// UpdateTicketStatusPriority applies status, priority and due date changes and
// upserts the attached comments. Any of the three allowed statuses may follow
// any other.
func (s *TicketService) UpdateTicketStatusPriority(ctx context.Context, callerID string, input UpdateTicketInput) (*domain.Ticket, error) {
	caller, err := s.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewBadRequest("invalid status", map[string]any{"status": *input.Status})
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperrors.NewBadRequest("invalid priority", map[string]any{"priority": *input.Priority})
	}
	for _, comment := range input.Comments {
		if strings.TrimSpace(comment.Content) == "" {
			return nil, apperrors.NewBadRequest("comment content is required", nil)
		}
		if comment.ID != "" && !isUUID(comment.ID) {
			return nil, apperrors.NewBadRequest("invalid comment id", map[string]any{"comment_id": comment.ID})
		}
	}

	ticket, err := s.activeTicket(ctx, input.CustomTicketID)
	if err != nil {
		return nil, err
	}
	// every comment edit is checked before anything is written
	if err := s.checkCommentEdits(ctx, ticket.ID, caller.ID, input.Comments); err != nil {
		return nil, err
	}

	oldStatus, oldPriority, oldDue := ticket.Status, ticket.Priority, ticket.DueDate
	if input.Status != nil {
		ticket.Status = *input.Status
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.DueDate != nil {
		due := input.DueDate.UTC()
		ticket.DueDate = &due
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	for _, in := range input.Comments {
		comment := &domain.TicketComment{
			ID:       strings.TrimSpace(in.ID),
			TicketID: ticket.ID,
			AuthorID: caller.ID,
			Content:  strings.TrimSpace(in.Content),
		}
		if err := s.comments.Upsert(ctx, comment); err != nil {
			return nil, lookupErr(err, "comment", map[string]any{"comment_id": in.ID})
		}
	}

	if ticket.Status != oldStatus {
		s.record(ctx, ticket.ID, caller.ID, domain.ChangeTypeStatus,
			map[string]any{"status": oldStatus}, map[string]any{"status": ticket.Status})
		eventType := events.EventTicketStatusChanged
		if ticket.Status == domain.TicketStatusResolved {
			eventType = events.EventTicketResolved
		}
		s.publish(ctx, eventType, ticket.CustomTicketID, caller.ID,
			events.StatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status})
	}
	if ticket.Priority != oldPriority {
		s.record(ctx, ticket.ID, caller.ID, domain.ChangeTypePriority,
			map[string]any{"priority": oldPriority}, map[string]any{"priority": ticket.Priority})
	}
	if dueChanged(oldDue, ticket.DueDate) {
		s.record(ctx, ticket.ID, caller.ID, domain.ChangeTypeDueDate,
			map[string]any{"due_date": oldDue}, map[string]any{"due_date": ticket.DueDate})
		s.publish(ctx, events.EventTicketDueDateChanged, ticket.CustomTicketID, caller.ID, nil)
	}
	if len(input.Comments) > 0 {
		s.publish(ctx, events.EventCommentAdded, ticket.CustomTicketID, caller.ID, nil)
	}
	return ticket, nil
}

// checkCommentEdits makes sure every comment being edited exists on the ticket
// and was written by the caller.
func (s *TicketService) checkCommentEdits(ctx context.Context, ticketID, callerID string, comments []CommentInput) error {
	var edits []string
	for _, in := range comments {
		if id := strings.TrimSpace(in.ID); id != "" {
			edits = append(edits, id)
		}
	}
	if len(edits) == 0 {
		return nil
	}
	existing, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	authors := make(map[string]string, len(existing))
	for _, comment := range existing {
		authors[comment.ID] = comment.AuthorID
	}
	for _, id := range edits {
		author, ok := authors[id]
		if !ok {
			return apperrors.NewNotFound("comment", map[string]any{"comment_id": id})
		}
		if author != callerID {
			return apperrors.NewForbidden("only the author can edit a comment")
		}
	}
	return nil
}

// CancelTicket soft-deletes the ticket by stamping its cancelled date.
func (s *TicketService) CancelTicket(ctx context.Context, customTicketID, callerID string) (*CancelResult, error) {
	caller, err := s.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByCustomID(ctx, strings.TrimSpace(customTicketID))
	if err != nil {
		return nil, lookupErr(err, "ticket", map[string]any{"custom_ticket_id": customTicketID})
	}
	if ticket.IsCancelled() {
		return nil, apperrors.NewConflict("ticket is already cancelled", map[string]any{"custom_ticket_id": ticket.CustomTicketID})
	}

	now := s.now().UTC()
	ticket.CancelledDate = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.record(ctx, ticket.ID, caller.ID, domain.ChangeTypeCancelled, nil, map[string]any{"cancelled_date": now})
	s.publish(ctx, events.EventTicketCancelled, ticket.CustomTicketID, caller.ID, nil)
	return &CancelResult{CustomTicketID: ticket.CustomTicketID, CancelledDate: now}, nil
}

// ReopenTicket brings a cancelled ticket back. The cancelled date is cleared
// so the ticket shows up in active listings again.
func (s *TicketService) ReopenTicket(ctx context.Context, customTicketID, callerID string) (*domain.Ticket, error) {
	caller, err := s.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByCustomID(ctx, strings.TrimSpace(customTicketID))
	if err != nil {
		return nil, lookupErr(err, "ticket", map[string]any{"custom_ticket_id": customTicketID})
	}
	if !ticket.IsCancelled() {
		return nil, apperrors.NewNotFound("cancelled ticket", map[string]any{"custom_ticket_id": ticket.CustomTicketID})
	}

	cancelledAt := *ticket.CancelledDate
	now := s.now().UTC()
	ticket.CancelledDate = nil
	ticket.ReOpenedDate = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.record(ctx, ticket.ID, caller.ID, domain.ChangeTypeReopened,
		map[string]any{"cancelled_date": cancelledAt}, map[string]any{"re_opened_date": now})
	s.publish(ctx, events.EventTicketReopened, ticket.CustomTicketID, caller.ID, nil)
	return ticket, nil
}

func dueChanged(before, after *time.Time) bool {
	switch {
	case before == nil && after == nil:
		return false
	case before == nil || after == nil:
		return true
	}
	return !before.Equal(*after)
}
