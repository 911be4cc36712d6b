package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// RequestsHandler exposes the leave and profile-update approval workflow.
type RequestsHandler struct {
	service *service.RequestPermissionService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestPermissionService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// RequestLeave POST /requests/leave.
func (h *RequestsHandler) RequestLeave(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.LeaveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.service.RequestForLeave(c.UserContext(), caller.ID, service.LeaveRequestInput{NumberOfDays: req.NumberOfDays})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(created)})
}

// RequestStatsUpdate POST /requests/stats-update.
func (h *RequestsHandler) RequestStatsUpdate(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.StatsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.service.RequestForStatsUpdate(c.UserContext(), caller.ID, service.StatsUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(created)})
}

// ListPending GET /requests/pending.
func (h *RequestsHandler) ListPending(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	pending, err := h.service.ListPending(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	items := make([]dto.RequestPermissionResponse, 0, len(pending))
	for i := range pending {
		items = append(items, requestResponse(&pending[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /requests/:id.
func (h *RequestsHandler) GetRequest(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	found, err := h.service.GetRequest(c.UserContext(), c.Params("id"), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(found)})
}

// ProcessRequest POST /requests/:id/process.
func (h *RequestsHandler) ProcessRequest(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.ProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	resolved, err := h.service.ProcessRequest(c.UserContext(), caller.ID, service.ProcessRequestInput{
		RequestID: c.Params("id"),
		Status:    req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(resolved)})
}

// FindProcessed GET /requests/:id/processed returns the caller's own resolved request.
func (h *RequestsHandler) FindProcessed(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	found, err := h.service.FindProcessedRequest(c.UserContext(), caller.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(found)})
}

// DeleteResolved DELETE /requests/resolved.
func (h *RequestsHandler) DeleteResolved(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	deleted, err := h.service.DeleteResolvedRequests(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": deleted}})
}
