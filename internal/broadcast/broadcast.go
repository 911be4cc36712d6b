// Package broadcast relays notifications to live listeners over Redis pub/sub.
package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Publisher pushes a notification to live listeners.
type Publisher interface {
	Publish(ctx context.Context, notification domain.Notification) error
}

// Payload is the wire form of a notification on the channel.
type Payload struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ActorID        string    `json:"actor_id"`
	Action         string    `json:"action"`
	CustomTicketID string    `json:"custom_ticket_id"`
	Message        string    `json:"message"`
	Own            bool      `json:"own"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewPayload converts a notification to its wire form.
func NewPayload(n domain.Notification) Payload {
	return Payload{
		ID:             n.ID,
		UserID:         n.UserID,
		ActorID:        n.ActorID,
		Action:         string(n.Action),
		CustomTicketID: n.CustomTicketID,
		Message:        n.Message,
		Own:            n.Own,
		CreatedAt:      n.CreatedAt,
	}
}

// RedisBroadcaster publishes and subscribes on one Redis channel.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisBroadcaster builds a broadcaster on channel.
func NewRedisBroadcaster(client *redis.Client, channel string, logger *zap.Logger) *RedisBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroadcaster{client: client, channel: channel, logger: logger}
}

// Publish implements Publisher.
func (b *RedisBroadcaster) Publish(ctx context.Context, notification domain.Notification) error {
	data, err := json.Marshal(NewPayload(notification))
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Subscribe streams payloads addressed to userID until ctx is done. The
// returned channel is closed when the subscription ends.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, userID string) <-chan Payload {
	out := make(chan Payload, 16)
	sub := b.client.Subscribe(ctx, b.channel)

	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var payload Payload
				if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
					b.logger.Warn("dropping malformed broadcast", zap.Error(err))
					continue
				}
				if payload.UserID != userID {
					continue
				}
				select {
				case out <- payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
