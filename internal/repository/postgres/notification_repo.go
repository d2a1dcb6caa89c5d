package postgres

import (
	"context"
	"fmt"

	"zelora-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	q := dbtx(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, title, message, order_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, read, created_at`,
		n.UserID, n.Type, n.Title, n.Message, n.OrderID,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)
}

func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, int64, error) {
	q := dbtx(ctx, r.db)

	if limit < 1 {
		limit = 20
	}

	rows, err := q.Query(ctx, `
		SELECT id, user_id, type, title, message, order_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.OrderID, &n.Read, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	var count int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	return notifications, count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	q := dbtx(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification", domain.ErrNotFound)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	q := dbtx(ctx, r.db)
	_, err := q.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	return err
}
