package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// HeadcountTable maps a ticket priority to how many engineers it gets.
type HeadcountTable map[domain.TicketPriority]int

// DefaultHeadcountTable leaves low and medium tickets unassigned and gives
// high one engineer and urgent two.
func DefaultHeadcountTable() HeadcountTable {
	return HeadcountTable{
		domain.TicketPriorityLow:    0,
		domain.TicketPriorityMedium: 0,
		domain.TicketPriorityHigh:   1,
		domain.TicketPriorityUrgent: 2,
	}
}

// HeadcountTableFromConfig validates a priority name to count table. Missing
// priorities fall back to the default table.
func HeadcountTableFromConfig(raw map[string]int) (HeadcountTable, error) {
	table := DefaultHeadcountTable()
	for name, count := range raw {
		priority := domain.TicketPriority(name)
		if !priority.Valid() {
			return nil, fmt.Errorf("unknown priority %q in headcount table", name)
		}
		if count < 0 {
			return nil, fmt.Errorf("negative headcount for %q", name)
		}
		table[priority] = count
	}
	return table, nil
}

// AutoAssignmentPolicy picks engineers for a new ticket by priority and category.
type AutoAssignmentPolicy struct {
	table      HeadcountTable
	categories repository.CategoryRepository
	resolver   *AvailabilityResolver
	logger     *zap.Logger
}

// NewAutoAssignmentPolicy builds the policy. A nil table uses the default.
func NewAutoAssignmentPolicy(table HeadcountTable, categories repository.CategoryRepository, resolver *AvailabilityResolver, logger *zap.Logger) *AutoAssignmentPolicy {
	if table == nil {
		table = DefaultHeadcountTable()
	}
	return &AutoAssignmentPolicy{table: table, categories: categories, resolver: resolver, logger: orNop(logger)}
}

// Required returns the headcount for priority.
func (p *AutoAssignmentPolicy) Required(priority domain.TicketPriority) (int, error) {
	if !priority.Valid() {
		return 0, apperrors.NewBadRequest("invalid priority", map[string]any{"priority": priority})
	}
	return p.table[priority], nil
}

// Assign returns the engineers a ticket should get. Priorities with a zero
// headcount return nothing without consulting availability. When fewer
// engineers are free than required, the free ones are returned.
func (p *AutoAssignmentPolicy) Assign(ctx context.Context, priority domain.TicketPriority, categoryName, customTicketID string) ([]domain.User, error) {
	required, err := p.Required(priority)
	if err != nil {
		return nil, err
	}
	if required == 0 {
		return nil, nil
	}

	name := strings.TrimSpace(categoryName)
	if name == "" {
		return nil, apperrors.NewBadRequest("category name is required for auto assignment", nil)
	}
	category, err := p.categories.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewBadRequest("unknown category", map[string]any{"category": name})
		}
		return nil, apperrors.MapError(err)
	}

	available, err := p.resolver.ListAvailableIn(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(available) < required {
		p.logger.Warn("not enough free engineers for ticket",
			zap.String("custom_ticket_id", customTicketID),
			zap.String("category", category.Name),
			zap.String("priority", string(priority)),
			zap.Int("required", required),
			zap.Int("available", len(available)))
		return available, nil
	}
	return available[:required], nil
}
