package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// DependentTicketLinker records that one ticket depends on another. Only
// self-reference is rejected; longer cycles are not checked.
type DependentTicketLinker struct {
	links repository.DependentTicketRepository
}

// NewDependentTicketLinker builds the linker.
func NewDependentTicketLinker(links repository.DependentTicketRepository) *DependentTicketLinker {
	return &DependentTicketLinker{links: links}
}

// Link makes childCustomID depend on parentCustomID.
func (l *DependentTicketLinker) Link(ctx context.Context, parentCustomID, childCustomID string) (*domain.DependentTicket, error) {
	parent := strings.TrimSpace(parentCustomID)
	child := strings.TrimSpace(childCustomID)
	if parent == "" || child == "" {
		return nil, apperrors.NewBadRequest("both ticket ids are required", nil)
	}
	if parent == child {
		return nil, apperrors.NewBadRequest("a ticket cannot depend on itself", map[string]any{"custom_ticket_id": parent})
	}
	link := &domain.DependentTicket{ParentCustomID: parent, ChildCustomID: child}
	if err := l.links.Create(ctx, link); err != nil {
		return nil, apperrors.MapError(err)
	}
	return link, nil
}

// DependsOn lists the tickets customID depends on.
func (l *DependentTicketLinker) DependsOn(ctx context.Context, customID string) ([]string, error) {
	ids, err := l.links.ListParents(ctx, customID)
	return ids, apperrors.MapError(err)
}

// Dependents lists the tickets that depend on customID.
func (l *DependentTicketLinker) Dependents(ctx context.Context, customID string) ([]string, error) {
	ids, err := l.links.ListChildren(ctx, customID)
	return ids, apperrors.MapError(err)
}
