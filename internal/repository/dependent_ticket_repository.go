package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// DependentTicketRepository stores depends-on edges keyed by custom ticket ids.
type DependentTicketRepository interface {
	Create(ctx context.Context, link *domain.DependentTicket) error
	ListParents(ctx context.Context, childCustomID string) ([]string, error)
	ListChildren(ctx context.Context, parentCustomID string) ([]string, error)
}

type dependentTicketRepository struct {
	pool *pgxpool.Pool
}

// NewDependentTicketRepository builds the repository.
func NewDependentTicketRepository(pool *pgxpool.Pool) DependentTicketRepository {
	return &dependentTicketRepository{pool: pool}
}

func (r *dependentTicketRepository) Create(ctx context.Context, link *domain.DependentTicket) error {
	const query = `
        INSERT INTO dependent_tickets (parent_custom_id, child_custom_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, link.ParentCustomID, link.ChildCustomID).Scan(&link.ID, &link.CreatedAt)
}

func (r *dependentTicketRepository) ListParents(ctx context.Context, childCustomID string) ([]string, error) {
	return r.listColumn(ctx,
		`SELECT parent_custom_id FROM dependent_tickets WHERE child_custom_id=$1 ORDER BY parent_custom_id`,
		childCustomID)
}

func (r *dependentTicketRepository) ListChildren(ctx context.Context, parentCustomID string) ([]string, error) {
	return r.listColumn(ctx,
		`SELECT child_custom_id FROM dependent_tickets WHERE parent_custom_id=$1 ORDER BY child_custom_id`,
		parentCustomID)
}

func (r *dependentTicketRepository) listColumn(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
