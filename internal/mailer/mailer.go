// Package mailer carries outbound email from the services to delivery. The
// services enqueue a Message; a separate worker renders and sends it.
package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Kind selects the template a message is rendered with.
type Kind string

const (
	KindTicketAssigned       Kind = "ticket_assigned"
	KindLeaveRequested       Kind = "leave_requested"
	KindLeaveApprovalNeeded  Kind = "leave_approval_needed"
	KindStatsUpdateRequested Kind = "stats_update_requested"
	KindStatsApprovalNeeded  Kind = "stats_update_approval_needed"
	KindRequestResolved      Kind = "request_resolved"
)

// Message is a template kind, one recipient and the values the template needs.
type Message struct {
	Kind Kind              `json:"kind"`
	To   string            `json:"to"`
	Data map[string]string `json:"data"`
}

// Mailer accepts a message for delivery.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer only logs messages. It stands in when no SMTP relay is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer builds a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send implements Mailer.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail not delivered, no relay configured",
		zap.String("kind", string(msg.Kind)),
		zap.String("to", msg.To))
	return nil
}
