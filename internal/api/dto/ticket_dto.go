package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload. Omitting engineer_ids leaves assignment to the
// headcount policy.
type CreateTicketRequest struct {
	CustomerName string                `json:"customer_name"`
	CategoryName string                `json:"category_name"`
	Issue        string                `json:"issue"`
	Priority     domain.TicketPriority `json:"priority"`
	DueDate      *time.Time            `json:"due_date"`
	DependsOn    *string               `json:"depends_on"`
	EngineerIDs  []string              `json:"engineer_ids"`
	FileURL      *string               `json:"file_url"`
}

// UpdateTicketRequest payload for PATCH /tickets/:id.
type UpdateTicketRequest struct {
	Status   *domain.TicketStatus   `json:"status"`
	Priority *domain.TicketPriority `json:"priority"`
	DueDate  *time.Time             `json:"due_date"`
	Comments []CommentRequest       `json:"comments"`
}

// CommentRequest creates a comment, or edits one when ID is set.
type CommentRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// EngineerIDsRequest payload for assign and unassign.
type EngineerIDsRequest struct {
	EngineerIDs []string `json:"engineer_ids"`
}

// AttachFileRequest payload.
type AttachFileRequest struct {
	URL string `json:"url"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             string                `json:"id"`
	CustomTicketID string                `json:"custom_ticket_id"`
	CustomerID     string                `json:"customer_id"`
	CategoryID     string                `json:"category_id"`
	CreatedBy      string                `json:"created_by"`
	Issue          string                `json:"issue"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	DueDate        *time.Time            `json:"due_date"`
	ReOpenedDate   *time.Time            `json:"re_opened_date"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Engineers  []UserResponse          `json:"engineers"`
	DependsOn  []string                `json:"depends_on"`
	Dependents []string                `json:"dependents"`
	Comments   []TicketCommentResponse `json:"comments"`
	Files      []TicketFileResponse    `json:"files"`
}

// TicketCommentResponse represents a comment.
type TicketCommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketFileResponse represents an attached file.
type TicketFileResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID          string                  `json:"id"`
	ChangedByID *string                 `json:"changed_by_id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	OldValue    map[string]any          `json:"old_value"`
	NewValue    map[string]any          `json:"new_value"`
	CreatedAt   time.Time               `json:"created_at"`
}
