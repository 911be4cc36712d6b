package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// MetricsResponse summarises ticket and request activity.
type MetricsResponse struct {
	TicketVolume       int                          `json:"ticket_volume"`
	AvgResolutionHours float64                      `json:"avg_resolution_hours"`
	TicketsByStatus    map[domain.TicketStatus]int  `json:"tickets_by_status"`
	RequestsByStatus   map[domain.RequestStatus]int `json:"requests_by_status"`
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID             string                    `json:"id"`
	ActorID        string                    `json:"actor_id"`
	Action         domain.NotificationAction `json:"action"`
	CustomTicketID string                    `json:"custom_ticket_id"`
	Message        string                    `json:"message"`
	Own            bool                      `json:"own"`
	Read           bool                      `json:"read"`
	CreatedAt      time.Time                 `json:"created_at"`
}
