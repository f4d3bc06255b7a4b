// internal/repository/postgres/notification_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"isp-billing-service/internal/domain/notification"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (customer_id, type, title, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`
	err := r.db.QueryRow(ctx, query, n.CustomerID, n.Type, n.Title, n.Message).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return translateWrite(err, "Notification", "Customer", "failed to create notification")
	}
	return nil
}

// ListLatest returns the newest notifications joined with the customer name
func (r *NotificationRepository) ListLatest(ctx context.Context, limit int) ([]notification.Notification, error) {
	if limit <= 0 || limit > notification.LatestLimit {
		limit = notification.LatestLimit
	}

	query := `
		SELECT n.id, n.customer_id, n.type, n.title, n.message, n.is_read, n.created_at, c.name
		FROM notifications n
		LEFT JOIN customers c ON n.customer_id = c.id
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(
			&n.ID, &n.CustomerID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt, &n.CustomerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead marks a single notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) (*notification.Notification, error) {
	query := `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1
		RETURNING id, customer_id, type, title, message, is_read, created_at
	`
	var n notification.Notification
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.CustomerID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.NotFound("Notification")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return &n, nil
}

// MarkAllRead marks every unread notification as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE is_read = FALSE`)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.NotFound("Notification")
	}
	return nil
}

// UnreadCount gets count of unread notifications
func (r *NotificationRepository) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE is_read = FALSE`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return count, nil
}
