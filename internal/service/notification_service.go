package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/broadcast"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const defaultNotificationLimit = 50

// NotificationService turns ticket events into per-recipient notifications and
// pushes them to the live channel.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	publisher     broadcast.Publisher
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators for the fanout.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Publisher        broadcast.Publisher
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		publisher:     deps.Publisher,
		dispatcher:    deps.Dispatcher,
		logger:        orNop(deps.Logger),
	}
}

// RegisterHandlers subscribes to every ticket event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.TicketEventTypes {
		n.dispatcher.Subscribe(eventType, n.handleTicketEvent)
	}
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	action, ok := event.Type.Action()
	if !ok {
		n.logger.Debug("event without notification action", zap.String("event_type", string(event.Type)))
		return nil
	}
	_, err := n.Spread(ctx, action, event.CustomTicketID, event.ActorID)
	return err
}

// Spread stores one notification per recipient and broadcasts each of them.
// Engineer removals only reach admins; everything else reaches every user.
// The actor gets a single "You ..." record instead of the third-person one.
func (n *NotificationService) Spread(ctx context.Context, action domain.NotificationAction, customTicketID, actorID string) ([]domain.Notification, error) {
	actor, err := n.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, lookupErr(err, "user", map[string]any{"user_id": actorID})
	}

	var roles []domain.Role
	if action == domain.ActionRemovedEngineer {
		roles = []domain.Role{domain.RoleAdmin}
	}
	recipients, err := n.users.ListByRoles(ctx, roles)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	phrase := action.Phrase()
	records := make([]domain.Notification, 0, len(recipients)+1)
	seen := map[string]struct{}{actor.ID: {}}
	for _, user := range recipients {
		if _, dup := seen[user.ID]; dup {
			continue
		}
		seen[user.ID] = struct{}{}
		records = append(records, domain.Notification{
			UserID:         user.ID,
			ActorID:        actor.ID,
			Action:         action,
			CustomTicketID: customTicketID,
			Message:        fmt.Sprintf("%s %s %s", actor.Name, phrase, customTicketID),
		})
	}
	records = append(records, domain.Notification{
		UserID:         actor.ID,
		ActorID:        actor.ID,
		Action:         action,
		CustomTicketID: customTicketID,
		Message:        fmt.Sprintf("You %s %s", ownPhrase(phrase), customTicketID),
		Own:            true,
	})

	if err := n.notifications.CreateBatch(ctx, records); err != nil {
		return nil, apperrors.MapError(err)
	}

	if n.publisher != nil {
		for _, record := range records {
			if err := n.publisher.Publish(ctx, record); err != nil {
				n.logger.Warn("notification broadcast failed",
					zap.String("user_id", record.UserID),
					zap.String("custom_ticket_id", customTicketID),
					zap.Error(err))
			}
		}
	}
	return records, nil
}

// List returns the most recent notifications of a user.
func (n *NotificationService) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewUnauthorized("caller identity required")
	}
	if limit <= 0 || limit > 200 {
		limit = defaultNotificationLimit
	}
	list, err := n.notifications.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if list == nil {
		list = []domain.Notification{}
	}
	return list, nil
}

// ownPhrase rewrites "has assigned" style phrases for the second person.
func ownPhrase(phrase string) string {
	if strings.HasPrefix(phrase, "has ") {
		return "have " + strings.TrimPrefix(phrase, "has ")
	}
	return phrase
}
