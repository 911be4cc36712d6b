package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AgentService manages supervisor pairings and applies approved profile updates.
type AgentService struct {
	users       repository.UserRepository
	supervisors repository.SupervisorRepository
	requestRepo repository.RequestPermissionRepository
	requests    *RequestPermissionService
	logger      *zap.Logger
	now         func() time.Time
}

// AgentDependencies bundles collaborators for the agent service.
type AgentDependencies struct {
	UserRepo       repository.UserRepository
	SupervisorRepo repository.SupervisorRepository
	RequestRepo    repository.RequestPermissionRepository
	Requests       *RequestPermissionService
	Logger         *zap.Logger
	Clock          func() time.Time
}

// NewAgentService builds the service.
func NewAgentService(deps AgentDependencies) *AgentService {
	return &AgentService{
		users:       deps.UserRepo,
		supervisors: deps.SupervisorRepo,
		requestRepo: deps.RequestRepo,
		requests:    deps.Requests,
		logger:      orNop(deps.Logger),
		now:         orNow(deps.Clock),
	}
}

// AssignSupervisor pairs an agent with the supervisor who approves their requests.
func (s *AgentService) AssignSupervisor(ctx context.Context, callerID, supervisorID, agentID string) (*domain.SupervisorAgent, error) {
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, lookupErr(err, "user", map[string]any{"user_id": callerID})
	}
	if caller.Role != domain.RoleAdmin && caller.Role != domain.RoleSupervisor {
		return nil, apperrors.NewForbidden("only supervisors and admins can pair agents")
	}
	if !isUUID(supervisorID) || !isUUID(agentID) {
		return nil, apperrors.NewBadRequest("invalid user id", map[string]any{"supervisor_id": supervisorID, "agent_id": agentID})
	}
	if supervisorID == agentID {
		return nil, apperrors.NewBadRequest("an agent cannot supervise themselves", nil)
	}

	supervisor, err := s.users.GetByID(ctx, supervisorID)
	if err != nil {
		return nil, lookupErr(err, "supervisor", map[string]any{"supervisor_id": supervisorID})
	}
	if supervisor.Role != domain.RoleSupervisor {
		return nil, apperrors.NewBadRequest("user is not a supervisor", map[string]any{"supervisor_id": supervisorID})
	}
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, lookupErr(err, "agent", map[string]any{"agent_id": agentID})
	}
	if agent.Role != domain.RoleAgent {
		return nil, apperrors.NewBadRequest("user is not an agent", map[string]any{"agent_id": agentID})
	}

	pairing := &domain.SupervisorAgent{SupervisorID: supervisor.ID, AgentID: agent.ID}
	if err := s.supervisors.Pair(ctx, pairing); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("agent already has a supervisor", map[string]any{"agent_id": agentID})
		}
		return nil, apperrors.MapError(err)
	}
	return pairing, nil
}

// ApplyApprovedUpdate writes an approved profile update onto the agent. Each
// request is applied at most once.
func (s *AgentService) ApplyApprovedUpdate(ctx context.Context, agentID, requestID string) (*domain.User, error) {
	req, err := s.requests.FindProcessedRequest(ctx, agentID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Type != domain.RequestTypeStatsUpdate {
		return nil, apperrors.NewBadRequest("request is not a profile update", map[string]any{"request_id": req.ID})
	}
	if req.Status == domain.RequestStatusRejected {
		return nil, apperrors.NewForbidden("The request was rejected. Please communicate with your supervisor.")
	}
	if req.AppliedAt != nil {
		return nil, apperrors.NewConflict("request was already applied", map[string]any{"request_id": req.ID})
	}

	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, lookupErr(err, "agent", map[string]any{"agent_id": agentID})
	}
	if req.ProposedName != nil {
		agent.Name = *req.ProposedName
	}
	if req.ProposedEmail != nil {
		agent.Email = *req.ProposedEmail
	}
	if req.ProposedPasswordHash != nil {
		agent.PasswordHash = *req.ProposedPasswordHash
	}
	if err := s.users.UpdateProfile(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.requestRepo.MarkApplied(ctx, req.ID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrRequestAlreadyApplied) {
			return nil, apperrors.NewConflict("request was already applied", map[string]any{"request_id": req.ID})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("profile update applied", zap.String("agent_id", agent.ID), zap.String("request_id", req.ID))
	return agent, nil
}
