package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

var (
	// ErrRequestNotPending is returned when a resolution races another one.
	ErrRequestNotPending = errors.New("request is no longer pending")
	// ErrRequestAlreadyApplied is returned when an approved update was already applied.
	ErrRequestAlreadyApplied = errors.New("request already applied")
)

// RequestPermissionRepository persists leave and profile-update requests.
type RequestPermissionRepository interface {
	Create(ctx context.Context, req *domain.RequestPermission) error
	GetByID(ctx context.Context, id string) (*domain.RequestPermission, error)
	// Resolve stores the outcome only if the request is still pending.
	Resolve(ctx context.Context, req *domain.RequestPermission) error
	FindProcessed(ctx context.Context, requesterID, requestID string) (*domain.RequestPermission, error)
	ListPending(ctx context.Context) ([]domain.RequestPermission, error)
	CountResolved(ctx context.Context) (int, error)
	DeleteOldestResolved(ctx context.Context, limit int) (int64, error)
	MarkApplied(ctx context.Context, id string, at time.Time) error
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int, error)
}

type requestPermissionRepository struct {
	pool *pgxpool.Pool
}

// NewRequestPermissionRepository builds the repository.
func NewRequestPermissionRepository(pool *pgxpool.Pool) RequestPermissionRepository {
	return &requestPermissionRepository{pool: pool}
}

const requestColumns = `id, requester_id, request_type, status, number_of_days, proposed_name, proposed_email,
               proposed_password_hash, approved_by, approved_at, rejected_by, rejected_at, applied_at, issued_at`

func (r *requestPermissionRepository) Create(ctx context.Context, req *domain.RequestPermission) error {
	const query = `
        INSERT INTO request_permissions (requester_id, request_type, status, number_of_days,
            proposed_name, proposed_email, proposed_password_hash)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, issued_at`
	return r.pool.QueryRow(ctx, query,
		req.RequesterID,
		req.Type,
		req.Status,
		req.NumberOfDays,
		req.ProposedName,
		req.ProposedEmail,
		req.ProposedPasswordHash,
	).Scan(&req.ID, &req.IssuedAt)
}

func (r *requestPermissionRepository) GetByID(ctx context.Context, id string) (*domain.RequestPermission, error) {
	query := `SELECT ` + requestColumns + ` FROM request_permissions WHERE id=$1`
	return scanRequest(r.pool.QueryRow(ctx, query, id))
}

func (r *requestPermissionRepository) Resolve(ctx context.Context, req *domain.RequestPermission) error {
	const query = `
        UPDATE request_permissions
        SET status=$1, approved_by=$2, approved_at=$3, rejected_by=$4, rejected_at=$5
        WHERE id=$6 AND status='pending'`
	cmd, err := r.pool.Exec(ctx, query,
		req.Status,
		req.ApprovedBy,
		req.ApprovedAt,
		req.RejectedBy,
		req.RejectedAt,
		req.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRequestNotPending
	}
	return nil
}

func (r *requestPermissionRepository) FindProcessed(ctx context.Context, requesterID, requestID string) (*domain.RequestPermission, error) {
	query := `SELECT ` + requestColumns + ` FROM request_permissions
        WHERE id=$1 AND requester_id=$2 AND status <> 'pending'`
	return scanRequest(r.pool.QueryRow(ctx, query, requestID, requesterID))
}

func (r *requestPermissionRepository) ListPending(ctx context.Context) ([]domain.RequestPermission, error) {
	query := `SELECT ` + requestColumns + ` FROM request_permissions
        WHERE status='pending' ORDER BY issued_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RequestPermission
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func (r *requestPermissionRepository) CountResolved(ctx context.Context) (int, error) {
	const query = `
        SELECT COUNT(*) FROM request_permissions
        WHERE (approved_by IS NULL) <> (rejected_by IS NULL)`
	var count int
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	return count, err
}

func (r *requestPermissionRepository) DeleteOldestResolved(ctx context.Context, limit int) (int64, error) {
	const query = `
        DELETE FROM request_permissions WHERE id IN (
            SELECT id FROM request_permissions
            WHERE (approved_by IS NULL) <> (rejected_by IS NULL)
            ORDER BY issued_at ASC, id ASC
            LIMIT $1)`
	cmd, err := r.pool.Exec(ctx, query, limit)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *requestPermissionRepository) MarkApplied(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE request_permissions SET applied_at=$1 WHERE id=$2 AND applied_at IS NULL`,
		at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRequestAlreadyApplied
	}
	return nil
}

func (r *requestPermissionRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM request_permissions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RequestStatus]int)
	for rows.Next() {
		var (
			status domain.RequestStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanRequest(row pgx.Row) (*domain.RequestPermission, error) {
	var req domain.RequestPermission
	if err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.Type,
		&req.Status,
		&req.NumberOfDays,
		&req.ProposedName,
		&req.ProposedEmail,
		&req.ProposedPasswordHash,
		&req.ApprovedBy,
		&req.ApprovedAt,
		&req.RejectedBy,
		&req.RejectedAt,
		&req.AppliedAt,
		&req.IssuedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}
