package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/mailer"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// lookupErr turns a missing row into a NotFound for resource and maps anything
// else through the shared error mapping.
func lookupErr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}

// splitUUIDs trims and de-duplicates ids, keeping their order, and reports the
// ones that are not UUID shaped.
func splitUUIDs(ids []string) (valid []string, invalid []string) {
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if _, err := uuid.Parse(id); err != nil {
			invalid = append(invalid, raw)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		valid = append(valid, id)
	}
	return valid, invalid
}

func isUUID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func orNow(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}
	return clock
}

func strPtr(s string) *string {
	return &s
}

// deliverMail hands msg to the mailer. Failures are logged and never change
// the outcome of the operation that triggered the mail.
func deliverMail(ctx context.Context, m mailer.Mailer, logger *zap.Logger, msg mailer.Message) {
	if m == nil || msg.To == "" {
		return
	}
	if err := m.Send(ctx, msg); err != nil {
		logger.Warn("failed to send mail",
			zap.String("kind", string(msg.Kind)),
			zap.String("to", msg.To),
			zap.Error(err))
	}
}
