package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// NotificationRepository persists per-recipient notifications.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	const query = `
        INSERT INTO notifications (user_id, actor_id, action, custom_ticket_id, message, own)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`

	batch := &pgx.Batch{}
	for i := range notifications {
		n := &notifications[i]
		batch.Queue(query, n.UserID, n.ActorID, n.Action, n.CustomTicketID, n.Message, n.Own).
			QueryRow(func(row pgx.Row) error {
				return row.Scan(&n.ID, &n.CreatedAt)
			})
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, user_id, actor_id, action, custom_ticket_id, message, own, read, created_at
        FROM notifications WHERE user_id=$1
        ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.ActorID,
			&n.Action,
			&n.CustomTicketID,
			&n.Message,
			&n.Own,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
