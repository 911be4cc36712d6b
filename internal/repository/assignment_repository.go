package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// AssignmentRepository persists ticket to engineer pairings. A pairing is
// unique per (ticket, engineer).
type AssignmentRepository interface {
	// Assign inserts the pairing and moves a pending ticket to in_progress in
	// one transaction.
	Assign(ctx context.Context, ticketID, engineerID string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error)
	ListByEngineers(ctx context.Context, engineerIDs []string) ([]domain.Assignment, error)
	// Unassign removes the pairings that exist and returns the engineer ids removed.
	Unassign(ctx context.Context, ticketID string, engineerIDs []string) ([]string, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository builds the repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Assign(ctx context.Context, ticketID, engineerID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO ticket_assignments (ticket_id, engineer_id) VALUES ($1,$2)`,
			ticketID, engineerID,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`UPDATE tickets SET status='in_progress', updated_at=NOW() WHERE id=$1 AND status='pending'`,
			ticketID,
		)
		return err
	})
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	const query = `
        SELECT ticket_id, engineer_id, created_at
        FROM ticket_assignments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepository) ListByEngineers(ctx context.Context, engineerIDs []string) ([]domain.Assignment, error) {
	if len(engineerIDs) == 0 {
		return nil, nil
	}
	const query = `
        SELECT ticket_id, engineer_id, created_at
        FROM ticket_assignments WHERE engineer_id = ANY($1::uuid[])`
	rows, err := r.pool.Query(ctx, query, engineerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepository) Unassign(ctx context.Context, ticketID string, engineerIDs []string) ([]string, error) {
	const query = `
        DELETE FROM ticket_assignments
        WHERE ticket_id=$1 AND engineer_id = ANY($2::uuid[])
        RETURNING engineer_id`
	rows, err := r.pool.Query(ctx, query, ticketID, engineerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var removed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		removed = append(removed, id)
	}
	return removed, rows.Err()
}

func scanAssignments(rows pgx.Rows) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := rows.Scan(&assignment.TicketID, &assignment.EngineerID, &assignment.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}
