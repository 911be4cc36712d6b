package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CommentRepository persists ticket comments.
type CommentRepository interface {
	// Upsert inserts a comment without an id and edits the content of an
	// existing one written by comment.AuthorID.
	Upsert(ctx context.Context, comment *domain.TicketComment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketComment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository constructs repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Upsert(ctx context.Context, comment *domain.TicketComment) error {
	if comment.ID == "" {
		const insert = `
            INSERT INTO ticket_comments (ticket_id, author_id, content)
            VALUES ($1,$2,$3)
            RETURNING id, created_at, updated_at`
		return r.pool.QueryRow(ctx, insert, comment.TicketID, comment.AuthorID, comment.Content).
			Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	}
	const update = `
        UPDATE ticket_comments SET content=$1, updated_at=NOW()
        WHERE id=$2 AND ticket_id=$3 AND author_id=$4
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, update, comment.Content, comment.ID, comment.TicketID, comment.AuthorID).
		Scan(&comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketComment, error) {
	const query = `
        SELECT id, ticket_id, author_id, content, created_at, updated_at
        FROM ticket_comments WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComments(rows)
}

func scanComments(rows pgx.Rows) ([]domain.TicketComment, error) {
	var result []domain.TicketComment
	for rows.Next() {
		var comment domain.TicketComment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

// FileRepository associates uploaded files with tickets.
type FileRepository interface {
	Attach(ctx context.Context, file *domain.TicketFile) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketFile, error)
}

type fileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository constructs repository.
func NewFileRepository(pool *pgxpool.Pool) FileRepository {
	return &fileRepository{pool: pool}
}

func (r *fileRepository) Attach(ctx context.Context, file *domain.TicketFile) error {
	const query = `
        INSERT INTO ticket_files (ticket_id, url)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, file.TicketID, file.URL).Scan(&file.ID, &file.CreatedAt)
}

func (r *fileRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketFile, error) {
	const query = `
        SELECT id, ticket_id, url, created_at
        FROM ticket_files WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketFile
	for rows.Next() {
		var file domain.TicketFile
		if err := rows.Scan(&file.ID, &file.TicketID, &file.URL, &file.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, file)
	}
	return result, rows.Err()
}
