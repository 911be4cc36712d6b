package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/mailer"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AssignTicketToEngineers attaches engineers to an active ticket. If any of
// them already holds this ticket the whole batch is rejected.
func (s *TicketService) AssignTicketToEngineers(ctx context.Context, customTicketID string, engineerIDs []string, callerID string) error {
	caller, err := s.requireUser(ctx, callerID)
	if err != nil {
		return err
	}
	ticket, err := s.activeTicket(ctx, customTicketID)
	if err != nil {
		return err
	}
	engineers, err := s.assignEngineers(ctx, ticket, engineerIDs, caller.ID)
	if err != nil {
		return err
	}
	s.afterAssignment(ctx, ticket, engineers, caller.ID)
	return nil
}

// UnassignTicketFromEngineers removes engineers from an active ticket and
// returns a summary naming them. The ticket status is left as it is.
func (s *TicketService) UnassignTicketFromEngineers(ctx context.Context, customTicketID string, engineerIDs []string, callerID string) (string, error) {
	caller, err := s.requireUser(ctx, callerID)
	if err != nil {
		return "", err
	}
	ticket, err := s.activeTicket(ctx, customTicketID)
	if err != nil {
		return "", err
	}
	engineers, err := s.resolveEngineers(ctx, engineerIDs)
	if err != nil {
		return "", err
	}

	ids := make([]string, len(engineers))
	for i := range engineers {
		ids[i] = engineers[i].ID
	}
	removed, err := s.assignments.Unassign(ctx, ticket.ID, ids)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if len(removed) == 0 {
		return "", apperrors.NewNotFound("assignment", map[string]any{
			"custom_ticket_id": ticket.CustomTicketID,
			"engineer_ids":     ids,
		})
	}

	removedSet := make(map[string]struct{}, len(removed))
	for _, id := range removed {
		removedSet[id] = struct{}{}
	}
	names := make([]string, 0, len(removed))
	for _, engineer := range engineers {
		if _, ok := removedSet[engineer.ID]; !ok {
			continue
		}
		names = append(names, engineer.Name)
		s.record(ctx, ticket.ID, caller.ID, domain.ChangeTypeUnassigned,
			map[string]any{"engineer_id": engineer.ID}, nil)
	}

	s.publish(ctx, events.EventEngineerUnassigned, ticket.CustomTicketID, caller.ID,
		events.EngineersPayload{EngineerIDs: removed})
	return fmt.Sprintf("You have unassigned the following engineer/s: %s from ticket %s",
		strings.Join(names, ", "), ticket.CustomTicketID), nil
}

// assignEngineers validates and stores the pairings. It does not send mail or
// publish events so ticket creation can defer those until it has succeeded.
func (s *TicketService) assignEngineers(ctx context.Context, ticket *domain.Ticket, engineerIDs []string, actorID string) ([]domain.User, error) {
	engineers, err := s.resolveEngineers(ctx, engineerIDs)
	if err != nil {
		return nil, err
	}

	var notEngineers []string
	for _, user := range engineers {
		if !user.IsEngineer() {
			notEngineers = append(notEngineers, user.ID)
		}
	}
	if len(notEngineers) > 0 {
		return nil, apperrors.NewBadRequest("the following users are not engineers", map[string]any{"user_ids": notEngineers})
	}

	current, err := s.assignments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	held := make(map[string]struct{}, len(current))
	for _, a := range current {
		held[a.EngineerID] = struct{}{}
	}
	var taken []string
	for _, engineer := range engineers {
		if _, ok := held[engineer.ID]; ok {
			taken = append(taken, engineer.Name)
		}
	}
	if len(taken) > 0 {
		return nil, apperrors.NewConflict(
			"Ticket is already assigned to the following engineer(s): "+strings.Join(taken, ", "),
			map[string]any{"custom_ticket_id": ticket.CustomTicketID})
	}

	previous := ticket.Status
	for _, engineer := range engineers {
		if err := s.assignments.Assign(ctx, ticket.ID, engineer.ID); err != nil {
			if apperrors.IsUniqueViolation(err) {
				return nil, apperrors.NewConflict(
					"Ticket is already assigned to the following engineer(s): "+engineer.Name,
					map[string]any{"custom_ticket_id": ticket.CustomTicketID})
			}
			return nil, apperrors.MapError(err)
		}
		s.record(ctx, ticket.ID, actorID, domain.ChangeTypeAssigned, nil,
			map[string]any{"engineer_id": engineer.ID})
	}

	if previous == domain.TicketStatusPending {
		ticket.Status = domain.TicketStatusInProgress
		s.record(ctx, ticket.ID, actorID, domain.ChangeTypeStatus,
			map[string]any{"status": previous},
			map[string]any{"status": ticket.Status})
	}
	return engineers, nil
}

// resolveEngineers checks the ids are well formed and belong to existing users,
// returning the users in request order.
func (s *TicketService) resolveEngineers(ctx context.Context, engineerIDs []string) ([]domain.User, error) {
	if len(engineerIDs) == 0 {
		return nil, apperrors.NewBadRequest("Engineer IDs should be an array and not empty", nil)
	}
	ids, invalid := splitUUIDs(engineerIDs)
	if len(invalid) > 0 {
		return nil, apperrors.NewBadRequest("invalid engineer ids", map[string]any{"engineer_ids": invalid})
	}

	found, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byID := make(map[string]domain.User, len(found))
	for _, user := range found {
		byID[user.ID] = user
	}

	var (
		missing []string
		ordered = make([]domain.User, 0, len(ids))
	)
	for _, id := range ids {
		user, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, user)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewBadRequest("the following engineer ids do not exist", map[string]any{"engineer_ids": missing})
	}
	return ordered, nil
}

func (s *TicketService) afterAssignment(ctx context.Context, ticket *domain.Ticket, engineers []domain.User, actorID string) {
	ids := make([]string, len(engineers))
	for i, engineer := range engineers {
		ids[i] = engineer.ID
		s.sendMail(ctx, mailer.Message{
			Kind: mailer.KindTicketAssigned,
			To:   engineer.Email,
			Data: map[string]string{
				"name":      engineer.Name,
				"ticket_id": ticket.CustomTicketID,
				"priority":  string(ticket.Priority),
				"issue":     ticket.Issue,
			},
		})
	}
	s.publish(ctx, events.EventEngineerAssigned, ticket.CustomTicketID, actorID,
		events.EngineersPayload{EngineerIDs: ids})
}
