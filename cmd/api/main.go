package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/broadcast"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/mailer"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	headcount, err := service.HeadcountTableFromConfig(cfg.Assignment.Headcount)
	if err != nil {
		logger.Fatal("invalid assignment headcount", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	dependentRepo := repository.NewDependentTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	fileRepo := repository.NewFileRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	requestRepo := repository.NewRequestPermissionRepository(pool)
	supervisorRepo := repository.NewSupervisorRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	mailQueue := mailer.NewRedisQueue(redis.Client, cfg.Mail.QueueKey, logger)
	broadcaster := broadcast.NewRedisBroadcaster(redis.Client, cfg.Notification.Channel, logger)
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Publisher:        broadcaster,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	worker.StartNotificationWorker(notificationService)

	resolver := service.NewAvailabilityResolver(categoryRepo, userRepo, assignmentRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		CustomerRepo:   customerRepo,
		CategoryRepo:   categoryRepo,
		AssignmentRepo: assignmentRepo,
		CommentRepo:    commentRepo,
		FileRepo:       fileRepo,
		HistoryRepo:    historyRepo,
		IDGenerator:    service.NewTicketIDGenerator(categoryRepo, ticketRepo),
		AutoAssigner:   service.NewAutoAssignmentPolicy(headcount, categoryRepo, resolver, logger),
		Linker:         service.NewDependentTicketLinker(dependentRepo),
		Mailer:         mailQueue,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	requestService := service.NewRequestPermissionService(service.RequestPermissionDependencies{
		RequestRepo:    requestRepo,
		UserRepo:       userRepo,
		SupervisorRepo: supervisorRepo,
		Mailer:         mailQueue,
		Logger:         logger,
		BcryptCost:     cfg.Auth.BcryptCost,
	})
	agentService := service.NewAgentService(service.AgentDependencies{
		UserRepo:       userRepo,
		SupervisorRepo: supervisorRepo,
		RequestRepo:    requestRepo,
		Requests:       requestService,
		Logger:         logger,
	})
	metricsService := service.NewMetricsService(ticketRepo, requestRepo, userRepo)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics, cfg.Mail.QueueKey),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Agents:         handlers.NewAgentsHandler(agentService),
		Reports:        handlers.NewReportsHandler(metricsService),
		Notifications:  handlers.NewNotificationsHandler(notificationService, broadcaster),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
