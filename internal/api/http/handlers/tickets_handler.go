package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	detail, err := h.service.CreateTicket(c.UserContext(), caller.ID, service.CreateTicketInput{
		CustomerName: req.CustomerName,
		CategoryName: req.CategoryName,
		Issue:        req.Issue,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		DependsOn:    req.DependsOn,
		EngineerIDs:  req.EngineerIDs,
		FileURL:      req.FileURL,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(detail)})
}

// ListTickets GET /tickets?sort=due_date&order=asc.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	order := service.TicketSort{
		Field: c.Query("sort", service.SortCreatedAt),
		Order: strings.ToUpper(c.Query("order", "DESC")),
	}
	tickets, err := h.service.ListTickets(c.UserContext(), caller.ID, order)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), c.Params("id"), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.UpdateTicketInput{
		CustomTicketID: c.Params("id"),
		Status:         req.Status,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
	}
	for _, comment := range req.Comments {
		input.Comments = append(input.Comments, service.CommentInput{ID: comment.ID, Content: comment.Content})
	}

	ticket, err := h.service.UpdateTicketStatusPriority(c.UserContext(), caller.ID, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), c.Params("id"), req.Content, caller.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// AttachFile POST /tickets/:id/files.
func (h *TicketsHandler) AttachFile(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.AttachFileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	file, err := h.service.AttachFile(c.UserContext(), c.Params("id"), req.URL, caller.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fileResponse(file)})
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	history, err := h.service.ListTicketHistory(c.UserContext(), c.Params("id"), caller.ID)
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(history))
	for i := range history {
		items = append(items, historyResponse(&history[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AssignEngineers POST /tickets/:id/engineers.
func (h *TicketsHandler) AssignEngineers(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.EngineerIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("Engineer IDs should be an array and not empty", nil)
	}
	if err := h.service.AssignTicketToEngineers(c.UserContext(), c.Params("id"), req.EngineerIDs, caller.ID); err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), c.Params("id"), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// UnassignEngineers DELETE /tickets/:id/engineers.
func (h *TicketsHandler) UnassignEngineers(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req dto.EngineerIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("Engineer IDs should be an array and not empty", nil)
	}
	message, err := h.service.UnassignTicketFromEngineers(c.UserContext(), c.Params("id"), req.EngineerIDs, caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": message}})
}

// CancelTicket POST /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	result, err := h.service.CancelTicket(c.UserContext(), c.Params("id"), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// ReopenTicket POST /tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.ReopenTicket(c.UserContext(), c.Params("id"), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}
