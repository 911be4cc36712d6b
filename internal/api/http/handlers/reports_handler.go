package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
)

// ReportsHandler serves the metrics dashboard figures.
type ReportsHandler struct {
	metrics *service.MetricsService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(metricsService *service.MetricsService) *ReportsHandler {
	return &ReportsHandler{metrics: metricsService}
}

// Metrics GET /reports/metrics.
func (h *ReportsHandler) Metrics(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	report, err := h.metrics.Report(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MetricsResponse{
		TicketVolume:       report.TicketVolume,
		AvgResolutionHours: report.AvgResolutionHours,
		TicketsByStatus:    report.TicketsByStatus,
		RequestsByStatus:   report.RequestsByStatus,
	}})
}
