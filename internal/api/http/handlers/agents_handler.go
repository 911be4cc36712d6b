package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AgentsHandler manages supervisor pairing and applying approved profile updates.
type AgentsHandler struct {
	agents *service.AgentService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(agentService *service.AgentService) *AgentsHandler {
	return &AgentsHandler{agents: agentService}
}

// AssignSupervisor POST /agents/supervisor.
func (h *AgentsHandler) AssignSupervisor(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.AssignSupervisorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.SupervisorID == "" || req.AgentID == "" {
		return apperrors.NewValidationError("supervisor_id and agent_id required", nil)
	}
	pairing, err := h.agents.AssignSupervisor(c.UserContext(), caller.ID, req.SupervisorID, req.AgentID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SupervisorPairingResponse{
		SupervisorID: pairing.SupervisorID,
		AgentID:      pairing.AgentID,
		CreatedAt:    pairing.CreatedAt,
	}})
}

// ApplyUpdate POST /agents/me/requests/:id/apply.
func (h *AgentsHandler) ApplyUpdate(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	user, err := h.agents.ApplyApprovedUpdate(c.UserContext(), caller.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}
