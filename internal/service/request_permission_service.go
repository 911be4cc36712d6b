package service

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/mailer"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// ResolvedBatchSize is how many resolved requests one cleanup removes.
const ResolvedBatchSize = 5

// RequestPermissionService runs the leave and profile-update approval workflow.
type RequestPermissionService struct {
	requests    repository.RequestPermissionRepository
	users       repository.UserRepository
	supervisors repository.SupervisorRepository
	mail        mailer.Mailer
	logger      *zap.Logger
	bcryptCost  int
	now         func() time.Time
}

// RequestPermissionDependencies bundles collaborators for the workflow.
type RequestPermissionDependencies struct {
	RequestRepo    repository.RequestPermissionRepository
	UserRepo       repository.UserRepository
	SupervisorRepo repository.SupervisorRepository
	Mailer         mailer.Mailer
	Logger         *zap.Logger
	BcryptCost     int
	Clock          func() time.Time
}

// NewRequestPermissionService builds the service.
func NewRequestPermissionService(deps RequestPermissionDependencies) *RequestPermissionService {
	return &RequestPermissionService{
		requests:    deps.RequestRepo,
		users:       deps.UserRepo,
		supervisors: deps.SupervisorRepo,
		mail:        deps.Mailer,
		logger:      orNop(deps.Logger),
		bcryptCost:  deps.BcryptCost,
		now:         orNow(deps.Clock),
	}
}

// LeaveRequestInput asks for paid leave.
type LeaveRequestInput struct {
	NumberOfDays int
}

// StatsUpdateInput proposes new profile values. Nil fields stay unchanged.
type StatsUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

// ProcessRequestInput resolves a pending request.
type ProcessRequestInput struct {
	RequestID string
	Status    domain.RequestStatus
}

// RequestForLeave files a pending leave request and notifies the agent's supervisor.
func (s *RequestPermissionService) RequestForLeave(ctx context.Context, requesterID string, input LeaveRequestInput) (*domain.RequestPermission, error) {
	if input.NumberOfDays <= 0 {
		return nil, apperrors.NewBadRequest("number of days must be positive", map[string]any{"number_of_days": input.NumberOfDays})
	}
	agent, supervisor, err := s.agentAndSupervisor(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	days := input.NumberOfDays
	req := &domain.RequestPermission{
		RequesterID:  agent.ID,
		Type:         domain.RequestTypeLeave,
		Status:       domain.RequestStatusPending,
		NumberOfDays: &days,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	daysText := strconv.Itoa(days)
	s.sendMail(ctx, mailer.Message{
		Kind: mailer.KindLeaveRequested,
		To:   agent.Email,
		Data: map[string]string{"name": agent.Name, "days": daysText, "supervisor": supervisor.Name},
	})
	s.sendMail(ctx, mailer.Message{
		Kind: mailer.KindLeaveApprovalNeeded,
		To:   supervisor.Email,
		Data: map[string]string{"name": supervisor.Name, "requester": agent.Name, "days": daysText, "request_id": req.ID},
	})
	return req, nil
}

// RequestForStatsUpdate files a pending profile update. The proposed password
// is stored hashed and never returned.
func (s *RequestPermissionService) RequestForStatsUpdate(ctx context.Context, requesterID string, input StatsUpdateInput) (*domain.RequestPermission, error) {
	name, email, password := trimmed(input.Name), trimmed(input.Email), input.Password
	if name == nil && email == nil && password == nil {
		return nil, apperrors.NewBadRequest("at least one of name, email or password is required", nil)
	}
	if email != nil {
		if _, err := mail.ParseAddress(*email); err != nil {
			return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": *email})
		}
	}
	var hash *string
	if password != nil {
		if err := auth.ValidatePassword(*password); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		hashed, err := auth.HashPassword(*password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		hash = &hashed
	}

	agent, supervisor, err := s.agentAndSupervisor(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	req := &domain.RequestPermission{
		RequesterID:          agent.ID,
		Type:                 domain.RequestTypeStatsUpdate,
		Status:               domain.RequestStatusPending,
		ProposedName:         name,
		ProposedEmail:        email,
		ProposedPasswordHash: hash,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.sendMail(ctx, mailer.Message{
		Kind: mailer.KindStatsUpdateRequested,
		To:   agent.Email,
		Data: map[string]string{"name": agent.Name, "supervisor": supervisor.Name},
	})
	s.sendMail(ctx, mailer.Message{
		Kind: mailer.KindStatsApprovalNeeded,
		To:   supervisor.Email,
		Data: map[string]string{"name": supervisor.Name, "requester": agent.Name, "request_id": req.ID},
	})
	return req.Redacted(), nil
}

// ProcessRequest approves or rejects a pending request. Nobody may resolve
// their own request, and a resolved request cannot be resolved again.
func (s *RequestPermissionService) ProcessRequest(ctx context.Context, resolverID string, input ProcessRequestInput) (*domain.RequestPermission, error) {
	if !input.Status.IsTerminal() {
		return nil, apperrors.NewBadRequest("status must be approved or rejected", map[string]any{"status": input.Status})
	}
	if !isUUID(input.RequestID) {
		return nil, apperrors.NewBadRequest("invalid request id", map[string]any{"request_id": input.RequestID})
	}
	if strings.TrimSpace(resolverID) == "" {
		return nil, apperrors.NewUnauthorized("caller identity required")
	}
	req, err := s.requests.GetByID(ctx, input.RequestID)
	if err != nil {
		return nil, lookupErr(err, "request", map[string]any{"request_id": input.RequestID})
	}
	if req.RequesterID == resolverID {
		return nil, apperrors.NewForbidden("cannot approve or reject your own request")
	}
	resolver, err := s.users.GetByID(ctx, resolverID)
	if err != nil {
		return nil, lookupErr(err, "user", map[string]any{"user_id": resolverID})
	}
	if resolver.Role != domain.RoleSupervisor && resolver.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only supervisors and admins can resolve requests")
	}
	if req.Status.IsTerminal() {
		return nil, apperrors.NewConflict("request is already "+string(req.Status), map[string]any{"request_id": req.ID})
	}

	now := s.now().UTC()
	req.Status = input.Status
	if input.Status == domain.RequestStatusApproved {
		req.ApprovedBy, req.ApprovedAt = &resolver.ID, &now
	} else {
		req.RejectedBy, req.RejectedAt = &resolver.ID, &now
	}
	if err := s.requests.Resolve(ctx, req); err != nil {
		if errors.Is(err, repository.ErrRequestNotPending) {
			return nil, apperrors.NewConflict("request is no longer pending", map[string]any{"request_id": req.ID})
		}
		return nil, apperrors.MapError(err)
	}

	if requester, err := s.users.GetByID(ctx, req.RequesterID); err != nil {
		s.logger.Warn("requester lookup failed, outcome mail skipped",
			zap.String("request_id", req.ID),
			zap.Error(err))
	} else {
		s.sendMail(ctx, mailer.Message{
			Kind: mailer.KindRequestResolved,
			To:   requester.Email,
			Data: map[string]string{
				"name":         requester.Name,
				"status":       string(req.Status),
				"request_type": requestTypeLabel(req.Type),
				"resolver":     resolver.Name,
				"request_id":   req.ID,
			},
		})
	}
	return req.Redacted(), nil
}

// FindProcessedRequest returns the requester's request once it is resolved.
// The stored password hash is kept so the approved update can be applied.
func (s *RequestPermissionService) FindProcessedRequest(ctx context.Context, requesterID, requestID string) (*domain.RequestPermission, error) {
	if !isUUID(requestID) {
		return nil, apperrors.NewBadRequest("invalid request id", map[string]any{"request_id": requestID})
	}
	req, err := s.requests.FindProcessed(ctx, requesterID, requestID)
	if err != nil {
		return nil, lookupErr(err, "processed request", map[string]any{"request_id": requestID})
	}
	return req, nil
}

// DeleteResolvedRequests removes the oldest batch of resolved requests.
func (s *RequestPermissionService) DeleteResolvedRequests(ctx context.Context, callerID string) (int64, error) {
	if _, err := s.requireResolver(ctx, callerID); err != nil {
		return 0, err
	}
	resolved, err := s.requests.CountResolved(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if resolved < ResolvedBatchSize {
		return 0, apperrors.NewNotFound("resolved requests", map[string]any{
			"resolved": resolved,
			"required": ResolvedBatchSize,
		})
	}
	deleted, err := s.requests.DeleteOldestResolved(ctx, ResolvedBatchSize)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.logger.Info("resolved requests deleted", zap.String("caller_id", callerID), zap.Int64("deleted", deleted))
	return deleted, nil
}

// ListPending returns requests awaiting a decision, oldest first.
func (s *RequestPermissionService) ListPending(ctx context.Context, callerID string) ([]domain.RequestPermission, error) {
	if _, err := s.requireResolver(ctx, callerID); err != nil {
		return nil, err
	}
	pending, err := s.requests.ListPending(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]domain.RequestPermission, 0, len(pending))
	for i := range pending {
		out = append(out, *pending[i].Redacted())
	}
	return out, nil
}

// GetRequest returns one request to its requester or to a resolver.
func (s *RequestPermissionService) GetRequest(ctx context.Context, requestID, callerID string) (*domain.RequestPermission, error) {
	if !isUUID(requestID) {
		return nil, apperrors.NewBadRequest("invalid request id", map[string]any{"request_id": requestID})
	}
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, lookupErr(err, "user", map[string]any{"user_id": callerID})
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, lookupErr(err, "request", map[string]any{"request_id": requestID})
	}
	if req.RequesterID != caller.ID && caller.Role != domain.RoleSupervisor && caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("request belongs to another agent")
	}
	return req.Redacted(), nil
}

func (s *RequestPermissionService) agentAndSupervisor(ctx context.Context, requesterID string) (*domain.User, *domain.User, error) {
	if strings.TrimSpace(requesterID) == "" {
		return nil, nil, apperrors.NewUnauthorized("caller identity required")
	}
	agent, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, nil, lookupErr(err, "agent", map[string]any{"user_id": requesterID})
	}
	if agent.Role != domain.RoleAgent {
		return nil, nil, apperrors.NewNotFound("agent", map[string]any{"user_id": requesterID})
	}
	supervisorID, err := s.supervisors.GetSupervisorID(ctx, agent.ID)
	if err != nil {
		return nil, nil, lookupErr(err, "supervisor", map[string]any{"agent_id": agent.ID})
	}
	supervisor, err := s.users.GetByID(ctx, supervisorID)
	if err != nil {
		return nil, nil, lookupErr(err, "supervisor", map[string]any{"supervisor_id": supervisorID})
	}
	return agent, supervisor, nil
}

func (s *RequestPermissionService) requireResolver(ctx context.Context, callerID string) (*domain.User, error) {
	if strings.TrimSpace(callerID) == "" {
		return nil, apperrors.NewUnauthorized("caller identity required")
	}
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, lookupErr(err, "user", map[string]any{"user_id": callerID})
	}
	if caller.Role != domain.RoleSupervisor && caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only supervisors and admins can manage requests")
	}
	return caller, nil
}

func (s *RequestPermissionService) sendMail(ctx context.Context, msg mailer.Message) {
	deliverMail(ctx, s.mail, s.logger, msg)
}

func requestTypeLabel(t domain.RequestType) string {
	if t == domain.RequestTypeLeave {
		return "paid leave"
	}
	return "profile update"
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
