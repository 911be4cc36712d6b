package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/broadcast"
	"github.com/spec-kit/helpdesk/internal/service"
)

const streamKeepAlive = 20 * time.Second

// NotificationStream delivers live notifications for one recipient.
type NotificationStream interface {
	Subscribe(ctx context.Context, userID string) <-chan broadcast.Payload
}

// NotificationsHandler serves the inbox and its live stream.
type NotificationsHandler struct {
	notifications *service.NotificationService
	stream        NotificationStream
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService, stream NotificationStream) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService, stream: stream}
}

// List GET /notifications?limit=50.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	items, err := h.notifications.List(c.UserContext(), caller.ID, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	resp := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		resp = append(resp, notificationResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Stream GET /notifications/stream relays the caller's notifications as
// server-sent events.
func (h *NotificationsHandler) Stream(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// the stream outlives the handler, so it cannot use the request context
	ctx, cancel := context.WithCancel(context.Background())
	payloads := h.stream.Subscribe(ctx, caller.ID)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(streamKeepAlive)
		defer ticker.Stop()

		for {
			select {
			case payload, ok := <-payloads:
				if !ok {
					return
				}
				data, err := json.Marshal(payload)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data)
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}
