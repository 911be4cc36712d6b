package service

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// Sort fields accepted by ListTickets.
const (
	SortCreatedAt      = "created_at"
	SortUpdatedAt      = "updated_at"
	SortDueDate        = "due_date"
	SortPriority       = "priority"
	SortStatus         = "status"
	SortCustomTicketID = "custom_ticket_id"
)

// TicketSort selects the listing order. Unknown fields fall back to
// created_at and anything but ASC means descending.
type TicketSort struct {
	Field string
	Order string
}

// TicketDetail is a ticket with everything attached to it.
type TicketDetail struct {
	Ticket     domain.Ticket
	Engineers  []domain.User
	DependsOn  []string
	Dependents []string
	Comments   []domain.TicketComment
	Files      []domain.TicketFile
}

// ListTickets returns the active tickets visible to the caller. Engineers only
// see tickets of their own category.
func (s *TicketService) ListTickets(ctx context.Context, callerID string, order TicketSort) ([]domain.Ticket, error) {
	caller, err := s.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	filter := repository.TicketFilter{}
	if caller.IsEngineer() {
		if caller.CategoryID == nil {
			return []domain.Ticket{}, nil
		}
		filter.CategoryID = caller.CategoryID
	}
	tickets, err := s.tickets.ListActive(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	SortTickets(tickets, order)
	return tickets, nil
}

// SortTickets orders tickets in place. Ties keep their incoming order.
func SortTickets(tickets []domain.Ticket, order TicketSort) {
	field := strings.ToLower(strings.TrimSpace(order.Field))
	asc := strings.EqualFold(strings.TrimSpace(order.Order), "ASC")

	var less func(a, b *domain.Ticket) bool
	switch field {
	case SortUpdatedAt:
		less = func(a, b *domain.Ticket) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortDueDate:
		// tickets without a due date sort after those with one
		less = func(a, b *domain.Ticket) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			}
			return a.DueDate.Before(*b.DueDate)
		}
	case SortPriority:
		less = func(a, b *domain.Ticket) bool { return a.Priority.Rank() < b.Priority.Rank() }
	case SortStatus:
		less = func(a, b *domain.Ticket) bool { return a.Status.Rank() < b.Status.Rank() }
	case SortCustomTicketID:
		less = func(a, b *domain.Ticket) bool { return a.CustomTicketID < b.CustomTicketID }
	default:
		less = func(a, b *domain.Ticket) bool { return a.CreatedAt.Before(b.CreatedAt) }
		if field != SortCreatedAt {
			asc = false
		}
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		if asc {
			return less(&tickets[i], &tickets[j])
		}
		return less(&tickets[j], &tickets[i])
	})
}

// GetTicket returns one active ticket with its engineers, links, comments and files.
func (s *TicketService) GetTicket(ctx context.Context, customTicketID, callerID string) (*TicketDetail, error) {
	caller, err := s.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.activeTicket(ctx, customTicketID)
	if err != nil {
		return nil, err
	}
	if err := canView(caller, ticket); err != nil {
		return nil, err
	}
	return s.detail(ctx, ticket)
}

// AddComment appends a comment to an active ticket.
func (s *TicketService) AddComment(ctx context.Context, customTicketID, content, authorID string) (*domain.TicketComment, error) {
	author, err := s.requireUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewBadRequest("comment content is required", nil)
	}
	ticket, err := s.activeTicket(ctx, customTicketID)
	if err != nil {
		return nil, err
	}
	if err := canView(author, ticket); err != nil {
		return nil, err
	}
	comment := &domain.TicketComment{TicketID: ticket.ID, AuthorID: author.ID, Content: strings.TrimSpace(content)}
	if err := s.comments.Upsert(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventCommentAdded, ticket.CustomTicketID, author.ID, nil)
	return comment, nil
}

// AttachFile links an uploaded file URL to an active ticket.
func (s *TicketService) AttachFile(ctx context.Context, customTicketID, url, callerID string) (*domain.TicketFile, error) {
	caller, err := s.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(url) == "" {
		return nil, apperrors.NewBadRequest("file url is required", nil)
	}
	ticket, err := s.activeTicket(ctx, customTicketID)
	if err != nil {
		return nil, err
	}
	file := &domain.TicketFile{TicketID: ticket.ID, URL: strings.TrimSpace(url)}
	if err := s.files.Attach(ctx, file); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventFileAttached, ticket.CustomTicketID, caller.ID, nil)
	return file, nil
}

// ListTicketHistory returns the audit trail of a ticket, cancelled or not.
func (s *TicketService) ListTicketHistory(ctx context.Context, customTicketID, callerID string) ([]domain.TicketHistory, error) {
	caller, err := s.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByCustomID(ctx, strings.TrimSpace(customTicketID))
	if err != nil {
		return nil, lookupErr(err, "ticket", map[string]any{"custom_ticket_id": customTicketID})
	}
	if err := canView(caller, ticket); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	entries, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []domain.TicketHistory{}
	}
	return entries, nil
}

func canView(user *domain.User, ticket *domain.Ticket) error {
	if !user.IsEngineer() {
		return nil
	}
	if user.CategoryID == nil || *user.CategoryID != ticket.CategoryID {
		return apperrors.NewForbidden("ticket belongs to another category")
	}
	return nil
}

func (s *TicketService) detail(ctx context.Context, ticket *domain.Ticket) (*TicketDetail, error) {
	out := &TicketDetail{
		Ticket:     *ticket,
		Engineers:  []domain.User{},
		DependsOn:  []string{},
		Dependents: []string{},
		Comments:   []domain.TicketComment{},
		Files:      []domain.TicketFile{},
	}

	assignments, err := s.assignments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(assignments) > 0 {
		ids := make([]string, len(assignments))
		for i, a := range assignments {
			ids[i] = a.EngineerID
		}
		users, err := s.users.ListByIDs(ctx, ids)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		byID := make(map[string]domain.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}
		for _, id := range ids {
			if u, ok := byID[id]; ok {
				out.Engineers = append(out.Engineers, u)
			}
		}
	}

	if s.linker != nil {
		parents, err := s.linker.DependsOn(ctx, ticket.CustomTicketID)
		if err != nil {
			return nil, err
		}
		children, err := s.linker.Dependents(ctx, ticket.CustomTicketID)
		if err != nil {
			return nil, err
		}
		out.DependsOn = append(out.DependsOn, parents...)
		out.Dependents = append(out.Dependents, children...)
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out.Comments = append(out.Comments, comments...)

	files, err := s.files.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out.Files = append(out.Files, files...)
	return out, nil
}
