package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/mailer"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	if err := redis.Ping(ctx); err != nil {
		logger.Fatal("redis unavailable", zap.Error(err))
	}

	queue := mailer.NewRedisQueue(redis.Client, cfg.Mail.QueueKey, logger)
	mailWorker, err := worker.NewMailWorker(cfg.Mail, queue, logger)
	if err != nil {
		logger.Fatal("failed to build mail worker", zap.Error(err))
	}

	if err := mailWorker.Run(ctx); err != nil {
		logger.Fatal("mail worker stopped", zap.Error(err))
	}
}
