package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/mailer"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const ticketIDAttempts = 3

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	users       repository.UserRepository
	customers   repository.CustomerRepository
	categories  repository.CategoryRepository
	assignments repository.AssignmentRepository
	comments    repository.CommentRepository
	files       repository.FileRepository
	history     repository.TicketHistoryRepository
	ids         *TicketIDGenerator
	auto        *AutoAssignmentPolicy
	linker      *DependentTicketLinker
	mail        mailer.Mailer
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles repositories and collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	CustomerRepo   repository.CustomerRepository
	CategoryRepo   repository.CategoryRepository
	AssignmentRepo repository.AssignmentRepository
	CommentRepo    repository.CommentRepository
	FileRepo       repository.FileRepository
	HistoryRepo    repository.TicketHistoryRepository
	IDGenerator    *TicketIDGenerator
	AutoAssigner   *AutoAssignmentPolicy
	Linker         *DependentTicketLinker
	Mailer         mailer.Mailer
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Clock          func() time.Time
}

// NewTicketService wires the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		customers:   deps.CustomerRepo,
		categories:  deps.CategoryRepo,
		assignments: deps.AssignmentRepo,
		comments:    deps.CommentRepo,
		files:       deps.FileRepo,
		history:     deps.HistoryRepo,
		ids:         deps.IDGenerator,
		auto:        deps.AutoAssigner,
		linker:      deps.Linker,
		mail:        deps.Mailer,
		dispatcher:  deps.Dispatcher,
		logger:      orNop(deps.Logger),
		now:         orNow(deps.Clock),
	}
}

// CreateTicketInput describes a new ticket. A nil EngineerIDs hands the
// ticket to the auto-assignment policy; DependsOn names an existing ticket the
// new one depends on.
type CreateTicketInput struct {
	CustomerName string
	CategoryName string
	Issue        string
	Priority     domain.TicketPriority
	DueDate      *time.Time
	DependsOn    *string
	EngineerIDs  []string
	FileURL      *string
}

// CreateTicket persists a ticket and assembles its links, engineers and file.
// When any assembly step fails the ticket row is deleted again before the
// error is returned.
func (s *TicketService) CreateTicket(ctx context.Context, callerID string, input CreateTicketInput) (*TicketDetail, error) {
	if err := validateCreateTicket(input); err != nil {
		return nil, err
	}
	creator, err := s.requireUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByName(ctx, strings.TrimSpace(input.CustomerName))
	if err != nil {
		return nil, lookupErr(err, "customer", map[string]any{"customer": input.CustomerName})
	}
	category, err := s.categories.GetByName(ctx, strings.TrimSpace(input.CategoryName))
	if err != nil {
		return nil, lookupErr(err, "category", map[string]any{"category": input.CategoryName})
	}

	ticket := &domain.Ticket{
		CustomerID: customer.ID,
		CreatedBy:  creator.ID,
		CategoryID: category.ID,
		Issue:      strings.TrimSpace(input.Issue),
		Priority:   input.Priority,
		Status:     domain.TicketStatusPending,
		DueDate:    input.DueDate,
	}
	if err := s.insertTicket(ctx, ticket, category); err != nil {
		return nil, err
	}

	assembled, err := s.assembleTicket(ctx, ticket, category, creator.ID, input)
	if err != nil {
		if delErr := s.tickets.Delete(ctx, ticket.ID); delErr != nil {
			s.logger.Error("failed to delete partially created ticket",
				zap.String("custom_ticket_id", ticket.CustomTicketID),
				zap.Error(delErr))
		}
		if apperrors.HasCode(err, apperrors.CodeNotFound) ||
			apperrors.HasCode(err, apperrors.CodeBadRequest) ||
			apperrors.HasCode(err, apperrors.CodeValidation) {
			return nil, err
		}
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == apperrors.CodeInternal {
			return nil, err
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventTicketCreated, ticket.CustomTicketID, creator.ID, nil)
	if assembled.parent != "" {
		s.publish(ctx, events.EventDependentTicketCreated, ticket.CustomTicketID, creator.ID,
			events.DependentPayload{ParentCustomID: assembled.parent})
	}
	if len(assembled.engineers) > 0 {
		s.afterAssignment(ctx, ticket, assembled.engineers, creator.ID)
	}

	return s.detail(ctx, ticket)
}

type assembly struct {
	parent    string
	engineers []domain.User
}

func (s *TicketService) assembleTicket(ctx context.Context, ticket *domain.Ticket, category *domain.Category, actorID string, input CreateTicketInput) (assembly, error) {
	var result assembly

	if input.DependsOn != nil && strings.TrimSpace(*input.DependsOn) != "" {
		parentID := strings.TrimSpace(*input.DependsOn)
		if parentID != ticket.CustomTicketID {
			if _, err := s.activeTicket(ctx, parentID); err != nil {
				return result, err
			}
		}
		if _, err := s.linker.Link(ctx, parentID, ticket.CustomTicketID); err != nil {
			return result, err
		}
		result.parent = parentID
	}

	if input.EngineerIDs != nil {
		engineers, err := s.assignEngineers(ctx, ticket, input.EngineerIDs, actorID)
		if err != nil {
			return result, err
		}
		result.engineers = engineers
	} else if s.auto != nil {
		picked, err := s.auto.Assign(ctx, ticket.Priority, category.Name, ticket.CustomTicketID)
		if err != nil {
			return result, err
		}
		if len(picked) > 0 {
			ids := make([]string, len(picked))
			for i := range picked {
				ids[i] = picked[i].ID
			}
			engineers, err := s.assignEngineers(ctx, ticket, ids, actorID)
			if err != nil {
				return result, err
			}
			result.engineers = engineers
		}
	}

	if input.FileURL != nil && strings.TrimSpace(*input.FileURL) != "" {
		file := &domain.TicketFile{TicketID: ticket.ID, URL: strings.TrimSpace(*input.FileURL)}
		if err := s.files.Attach(ctx, file); err != nil {
			return result, err
		}
	}
	return result, nil
}

// insertTicket reserves an id and stores the row, retrying when another
// writer already took the id.
func (s *TicketService) insertTicket(ctx context.Context, ticket *domain.Ticket, category *domain.Category) error {
	var lastErr error
	for attempt := 0; attempt < ticketIDAttempts; attempt++ {
		customID, err := s.ids.GenerateFor(ctx, category)
		if err != nil {
			return err
		}
		ticket.CustomTicketID = customID
		lastErr = s.tickets.Create(ctx, ticket)
		if lastErr == nil {
			return nil
		}
		if !apperrors.IsUniqueViolation(lastErr) {
			return apperrors.MapError(lastErr)
		}
		s.logger.Warn("ticket id already taken, retrying",
			zap.String("custom_ticket_id", customID),
			zap.Int("attempt", attempt+1))
	}
	return apperrors.MapError(lastErr)
}

func validateCreateTicket(input CreateTicketInput) error {
	missing := map[string]any{}
	if strings.TrimSpace(input.CustomerName) == "" {
		missing["customer_name"] = "required"
	}
	if strings.TrimSpace(input.CategoryName) == "" {
		missing["category_name"] = "required"
	}
	if strings.TrimSpace(input.Issue) == "" {
		missing["issue"] = "required"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing ticket fields", missing)
	}
	if !input.Priority.Valid() {
		return apperrors.NewBadRequest("invalid priority", map[string]any{"priority": input.Priority})
	}
	return nil
}

func (s *TicketService) requireUser(ctx context.Context, userID string) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewUnauthorized("caller identity required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}

// activeTicket loads a ticket that has not been cancelled.
func (s *TicketService) activeTicket(ctx context.Context, customTicketID string) (*domain.Ticket, error) {
	id := strings.TrimSpace(customTicketID)
	if id == "" {
		return nil, apperrors.NewBadRequest("ticket id is required", nil)
	}
	ticket, err := s.tickets.GetByCustomID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "ticket", map[string]any{"custom_ticket_id": id})
	}
	if ticket.IsCancelled() {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"custom_ticket_id": id})
	}
	return ticket, nil
}

func (s *TicketService) record(ctx context.Context, ticketID, actorID string, change domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: strPtr(actorID),
		ChangeType:  change,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record ticket history",
			zap.String("ticket_id", ticketID),
			zap.String("change_type", string(change)),
			zap.Error(err))
	}
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, customTicketID, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		CustomTicketID: customTicketID,
		ActorID:        actorID,
		Timestamp:      s.now().UTC(),
		Payload:        payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event", string(eventType)),
			zap.String("custom_ticket_id", customTicketID),
			zap.Error(err))
	}
}

func (s *TicketService) sendMail(ctx context.Context, msg mailer.Message) {
	deliverMail(ctx, s.mail, s.logger, msg)
}
