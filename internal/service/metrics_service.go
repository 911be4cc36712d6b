package service

import (
	"context"
	"math"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// MetricsReport summarises ticket and request activity.
type MetricsReport struct {
	TicketVolume       int
	AvgResolutionHours float64
	TicketsByStatus    map[domain.TicketStatus]int
	RequestsByStatus   map[domain.RequestStatus]int
}

// MetricsService aggregates reporting figures.
type MetricsService struct {
	tickets  repository.TicketRepository
	requests repository.RequestPermissionRepository
	users    repository.UserRepository
}

// NewMetricsService builds the service.
func NewMetricsService(tickets repository.TicketRepository, requests repository.RequestPermissionRepository, users repository.UserRepository) *MetricsService {
	return &MetricsService{tickets: tickets, requests: requests, users: users}
}

// Report returns the current figures. Every status is present, zero or not.
func (s *MetricsService) Report(ctx context.Context, callerID string) (*MetricsReport, error) {
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, lookupErr(err, "user", map[string]any{"user_id": callerID})
	}
	if caller.Role != domain.RoleAdmin && caller.Role != domain.RoleSupervisor {
		return nil, apperrors.NewForbidden("only supervisors and admins can read metrics")
	}

	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	requestCounts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	report := &MetricsReport{
		TicketVolume:       stats.Volume,
		AvgResolutionHours: math.Round(stats.AvgResolutionHours*100) / 100,
		TicketsByStatus: map[domain.TicketStatus]int{
			domain.TicketStatusPending:    0,
			domain.TicketStatusInProgress: 0,
			domain.TicketStatusResolved:   0,
		},
		RequestsByStatus: map[domain.RequestStatus]int{
			domain.RequestStatusPending:  0,
			domain.RequestStatusApproved: 0,
			domain.RequestStatusRejected: 0,
		},
	}
	for status, count := range stats.ByStatus {
		report.TicketsByStatus[status] = count
	}
	for status, count := range requestCounts {
		report.RequestsByStatus[status] = count
	}
	return report, nil
}
