package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func requireCaller(c *fiber.Ctx) (*domain.Caller, error) {
	caller, ok := auth.CallerFromContext(c)
	if !ok || caller == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return caller, nil
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		CategoryID: u.CategoryID,
	}
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:             t.ID,
		CustomTicketID: t.CustomTicketID,
		CustomerID:     t.CustomerID,
		CategoryID:     t.CategoryID,
		CreatedBy:      t.CreatedBy,
		Issue:          t.Issue,
		Status:         t.Status,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		ReOpenedDate:   t.ReOpenedDate,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func ticketDetail(d *service.TicketDetail) dto.TicketDetailResponse {
	resp := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(&d.Ticket),
		Engineers:     make([]dto.UserResponse, 0, len(d.Engineers)),
		DependsOn:     append([]string{}, d.DependsOn...),
		Dependents:    append([]string{}, d.Dependents...),
		Comments:      make([]dto.TicketCommentResponse, 0, len(d.Comments)),
		Files:         make([]dto.TicketFileResponse, 0, len(d.Files)),
	}
	for i := range d.Engineers {
		resp.Engineers = append(resp.Engineers, userResponse(&d.Engineers[i]))
	}
	for i := range d.Comments {
		resp.Comments = append(resp.Comments, commentResponse(&d.Comments[i]))
	}
	for i := range d.Files {
		resp.Files = append(resp.Files, fileResponse(&d.Files[i]))
	}
	return resp
}

func commentResponse(c *domain.TicketComment) dto.TicketCommentResponse {
	return dto.TicketCommentResponse{
		ID:        c.ID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fileResponse(f *domain.TicketFile) dto.TicketFileResponse {
	return dto.TicketFileResponse{ID: f.ID, URL: f.URL, CreatedAt: f.CreatedAt}
}

func historyResponse(h *domain.TicketHistory) dto.TicketHistoryResponse {
	return dto.TicketHistoryResponse{
		ID:          h.ID,
		ChangedByID: h.ChangedByID,
		ChangeType:  h.ChangeType,
		OldValue:    h.OldValue,
		NewValue:    h.NewValue,
		CreatedAt:   h.CreatedAt,
	}
}

// requestResponse drops the proposed password hash regardless of what the
// service handed back.
func requestResponse(r *domain.RequestPermission) dto.RequestPermissionResponse {
	return dto.RequestPermissionResponse{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		Type:          r.Type,
		Status:        r.Status,
		NumberOfDays:  r.NumberOfDays,
		ProposedName:  r.ProposedName,
		ProposedEmail: r.ProposedEmail,
		ApprovedBy:    r.ApprovedBy,
		ApprovedAt:    r.ApprovedAt,
		RejectedBy:    r.RejectedBy,
		RejectedAt:    r.RejectedAt,
		AppliedAt:     r.AppliedAt,
		IssuedAt:      r.IssuedAt,
	}
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:             n.ID,
		ActorID:        n.ActorID,
		Action:         n.Action,
		CustomTicketID: n.CustomTicketID,
		Message:        n.Message,
		Own:            n.Own,
		Read:           n.Read,
		CreatedAt:      n.CreatedAt,
	}
}
