package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/mailer"
)

// MailWorker drains the mail queue into the configured deliverer.
type MailWorker struct {
	queue   *mailer.RedisQueue
	deliver mailer.Mailer
	logger  *zap.Logger
}

// NewMailWorker builds a worker for queue.
func NewMailWorker(cfg config.MailConfig, queue *mailer.RedisQueue, logger *zap.Logger) (*MailWorker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	deliver, err := NewDeliverer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &MailWorker{queue: queue, deliver: deliver, logger: logger}, nil
}

// NewDeliverer returns an SMTP sender when a relay is configured and a
// logging stand-in otherwise.
func NewDeliverer(cfg config.MailConfig, logger *zap.Logger) (mailer.Mailer, error) {
	if !cfg.SMTPEnabled() {
		logger.Warn("SMTP relay not configured, mail will only be logged")
		return mailer.NewLogMailer(logger), nil
	}
	renderer, err := mailer.NewRenderer(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return mailer.NewSMTPSender(cfg, renderer), nil
}

// Run blocks until ctx is cancelled.
func (w *MailWorker) Run(ctx context.Context) error {
	w.logger.Info("mail worker started")
	err := w.queue.Consume(ctx, w.deliver)
	if errors.Is(err, context.Canceled) {
		w.logger.Info("mail worker stopped")
		return nil
	}
	return err
}
