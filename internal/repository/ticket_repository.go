package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketFilter narrows active ticket listings.
type TicketFilter struct {
	CategoryID *string
	Statuses   []domain.TicketStatus
}

// TicketStats aggregates ticket metrics.
type TicketStats struct {
	Volume             int
	AvgResolutionHours float64
	ByStatus           map[domain.TicketStatus]int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByCustomID(ctx context.Context, customTicketID string) (*domain.Ticket, error)
	ListActive(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// NextSequence atomically reserves the next ticket number behind an id
	// prefix. Categories sharing a prefix share the counter.
	NextSequence(ctx context.Context, prefix string) (int, error)
	Stats(ctx context.Context) (TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, custom_ticket_id, customer_id, created_by, category_id, issue, priority, status,
               due_date, cancelled_date, re_opened_date, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (custom_ticket_id, customer_id, created_by, category_id, issue, priority, status, due_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.CustomTicketID,
		ticket.CustomerID,
		ticket.CreatedBy,
		ticket.CategoryID,
		ticket.Issue,
		ticket.Priority,
		ticket.Status,
		ticket.DueDate,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, priority=$2, due_date=$3, cancelled_date=$4, re_opened_date=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.DueDate,
		ticket.CancelledDate,
		ticket.ReOpenedDate,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByCustomID(ctx context.Context, customTicketID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE custom_ticket_id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, customTicketID))
}

func (r *ticketRepository) ListActive(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"cancelled_date IS NULL"}
	args := []any{}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// NextSequence seeds the counter from the highest suffix already issued under
// the prefix, then increments it under the row lock taken by the upsert.
func (r *ticketRepository) NextSequence(ctx context.Context, prefix string) (int, error) {
	const query = `
        INSERT INTO ticket_sequences (prefix, last_value)
        VALUES ($1, COALESCE((
            SELECT MAX(CAST(SUBSTRING(custom_ticket_id FROM '[0-9]+$') AS INTEGER))
            FROM tickets WHERE starts_with(custom_ticket_id, $1)), 0) + 1)
        ON CONFLICT (prefix) DO UPDATE SET last_value = ticket_sequences.last_value + 1
        RETURNING last_value`
	var next int
	if err := r.pool.QueryRow(ctx, query, prefix).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *ticketRepository) Stats(ctx context.Context) (TicketStats, error) {
	stats := TicketStats{ByStatus: make(map[domain.TicketStatus]int)}

	const aggregate = `
        SELECT COUNT(*),
               COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600)
                   FILTER (WHERE status='resolved'), 0)
        FROM tickets WHERE cancelled_date IS NULL`
	if err := r.pool.QueryRow(ctx, aggregate).Scan(&stats.Volume, &stats.AvgResolutionHours); err != nil {
		return stats, err
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets WHERE cancelled_date IS NULL GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status domain.TicketStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.ByStatus[status] = count
	}
	return stats, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomTicketID,
		&ticket.CustomerID,
		&ticket.CreatedBy,
		&ticket.CategoryID,
		&ticket.Issue,
		&ticket.Priority,
		&ticket.Status,
		&ticket.DueDate,
		&ticket.CancelledDate,
		&ticket.ReOpenedDate,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
