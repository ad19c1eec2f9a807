package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.CreatedAt = n.CreatedAt.UTC()

	_, err := r.db.ExecContext(ctx, r.q(query),
		n.ID,
		n.UserID,
		n.Type,
		n.Message,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) FindUnread(ctx context.Context, userID uuid.UUID, notificationType, message string) (*model.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE user_id = ? AND type = ? AND message = ? AND is_read = ?
		ORDER BY created_at
		LIMIT 1
	`

	var n model.Notification
	err := r.db.GetContext(ctx, &n, r.q(query), userID, notificationType, message, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find unread notification: %w", err)
	}
	return &n, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, p model.Pagination) ([]*model.Notification, error) {
	query := `SELECT * FROM notifications WHERE user_id = ?`
	args := []interface{}{userID}

	if unreadOnly {
		query += " AND is_read = ?"
		args = append(args, false)
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, p.Limit(), p.Offset())

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, r.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, r.q(query), true, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireAffected(result, "notification")
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`

	result, err := r.db.ExecContext(ctx, r.q(query), true, userID, false)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
