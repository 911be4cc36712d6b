package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Requests       *handlers.RequestsHandler
	Agents         *handlers.AgentsHandler
	Reports        *handlers.ReportsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/stats", cfg.Health.Stats)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	staff := auth.RequireRoles(domain.RoleAdmin, domain.RoleSupervisor, domain.RoleAgent)
	resolvers := auth.RequireRoles(domain.RoleAdmin, domain.RoleSupervisor)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", staff, cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/files", cfg.Tickets.AttachFile)
	tickets.Post("/:id/engineers", staff, cfg.Tickets.AssignEngineers)
	tickets.Delete("/:id/engineers", staff, cfg.Tickets.UnassignEngineers)
	tickets.Post("/:id/cancel", staff, cfg.Tickets.CancelTicket)
	tickets.Post("/:id/reopen", staff, cfg.Tickets.ReopenTicket)

	requests := api.Group("/requests")
	requests.Post("/leave", cfg.Requests.RequestLeave)
	requests.Post("/stats-update", cfg.Requests.RequestStatsUpdate)
	requests.Get("/pending", resolvers, cfg.Requests.ListPending)
	requests.Delete("/resolved", resolvers, cfg.Requests.DeleteResolved)
	requests.Get("/:id", cfg.Requests.GetRequest)
	requests.Get("/:id/processed", cfg.Requests.FindProcessed)
	requests.Post("/:id/process", cfg.Requests.ProcessRequest)

	agents := api.Group("/agents")
	agents.Post("/supervisor", resolvers, cfg.Agents.AssignSupervisor)
	agents.Post("/me/requests/:id/apply", cfg.Agents.ApplyUpdate)

	api.Get("/reports/metrics", resolvers, cfg.Reports.Metrics)

	api.Get("/notifications", cfg.Notifications.List)
	api.Get("/notifications/stream", cfg.Notifications.Stream)
}
