package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AvailabilityResolver lists the engineers of a category that hold no assignment.
type AvailabilityResolver struct {
	categories  repository.CategoryRepository
	users       repository.UserRepository
	assignments repository.AssignmentRepository
}

// NewAvailabilityResolver builds the resolver.
func NewAvailabilityResolver(categories repository.CategoryRepository, users repository.UserRepository, assignments repository.AssignmentRepository) *AvailabilityResolver {
	return &AvailabilityResolver{categories: categories, users: users, assignments: assignments}
}

// ListAvailable returns the free engineers of the named category. An empty
// result means everyone qualified is busy; a category nobody is qualified for
// is NotFound.
func (r *AvailabilityResolver) ListAvailable(ctx context.Context, categoryName string) ([]domain.User, error) {
	name := strings.TrimSpace(categoryName)
	category, err := r.categories.GetByName(ctx, name)
	if err != nil {
		return nil, lookupErr(err, "category", map[string]any{"category": name})
	}
	return r.ListAvailableIn(ctx, category)
}

// ListAvailableIn is ListAvailable for a resolved category.
func (r *AvailabilityResolver) ListAvailableIn(ctx context.Context, category *domain.Category) ([]domain.User, error) {
	engineers, err := r.users.ListEngineersByCategory(ctx, category.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(engineers) == 0 {
		return nil, apperrors.NewNotFound("engineer", map[string]any{"category": category.Name})
	}

	ids := make([]string, len(engineers))
	for i := range engineers {
		ids[i] = engineers[i].ID
	}
	active, err := r.assignments.ListByEngineers(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	busy := make(map[string]struct{}, len(active))
	for _, a := range active {
		busy[a.EngineerID] = struct{}{}
	}

	available := make([]domain.User, 0, len(engineers))
	for _, engineer := range engineers {
		if _, taken := busy[engineer.ID]; !taken {
			available = append(available, engineer)
		}
	}
	return available, nil
}
