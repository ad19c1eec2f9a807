package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/internal/repository"
)

type alertRepository struct {
	BaseRepository
}

func NewAlertRepository(base BaseRepository) repository.AlertRepository {
	return &alertRepository{base}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	query := `
		INSERT INTO alerts (id, item_id, project_id, type, message, severity, triggered_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.TriggeredAt.IsZero() {
		alert.TriggeredAt = time.Now()
	}
	alert.TriggeredAt = alert.TriggeredAt.UTC()

	_, err := r.db.ExecContext(ctx, r.q(query),
		alert.ID,
		alert.ItemID,
		alert.ProjectID,
		alert.Type,
		alert.Message,
		alert.Severity,
		alert.TriggeredAt,
		alert.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *alertRepository) ExistsInWindow(ctx context.Context, itemID uuid.UUID, alertType string, from, to time.Time) (bool, error) {
	query := `
		SELECT COUNT(*) FROM alerts
		WHERE item_id = ? AND type = ? AND triggered_at >= ? AND triggered_at < ?
	`

	var count int
	if err := r.db.GetContext(ctx, &count, r.q(query), itemID, alertType, from.UTC(), to.UTC()); err != nil {
		return false, fmt.Errorf("failed to check existing alerts: %w", err)
	}
	return count > 0, nil
}

func (r *alertRepository) List(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error) {
	query := `SELECT * FROM alerts WHERE 1 = 1`
	args := []interface{}{}

	if filters == nil {
		filters = &model.AlertFilters{}
	}
	if filters.ProjectID != nil {
		query += " AND project_id = ?"
		args = append(args, *filters.ProjectID)
	}
	if filters.ItemID != nil {
		query += " AND item_id = ?"
		args = append(args, *filters.ItemID)
	}
	if filters.UnreadOnly {
		query += " AND is_read = ?"
		args = append(args, false)
	}

	query += " ORDER BY triggered_at DESC LIMIT ? OFFSET ?"
	args = append(args, filters.Limit(), filters.Offset())

	var alerts []*model.Alert
	if err := r.db.SelectContext(ctx, &alerts, r.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, r.q(`UPDATE alerts SET is_read = ? WHERE id = ?`), true, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	return requireAffected(result, "alert")
}
