package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/internal/repository"
)

type itemRepository struct {
	BaseRepository
}

func NewItemRepository(base BaseRepository) repository.ItemRepository {
	return &itemRepository{base}
}

// itemRow is an item joined with its project and assignee
type itemRow struct {
	model.Item
	JoinedProjectName string         `db:"project_name"`
	AssigneeName      sql.NullString `db:"assignee_name"`
	AssigneeEmail     sql.NullString `db:"assignee_email"`
}

func (row *itemRow) toModel() *model.Item {
	item := row.Item
	item.ProjectName = row.JoinedProjectName
	if item.AssignedTo != nil && row.AssigneeEmail.Valid {
		item.Assignee = &model.UserRef{
			ID:    *item.AssignedTo,
			Name:  row.AssigneeName.String,
			Email: row.AssigneeEmail.String,
		}
	}
	return &item
}

const itemSelect = `
	SELECT i.*, p.name AS project_name, u.name AS assignee_name, u.email AS assignee_email
	FROM items i
	JOIN projects p ON p.id = i.project_id
	LEFT JOIN users u ON u.id = i.assigned_to
`

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	query := `
		INSERT INTO items (
			id, project_id, name, description, supplier, phase, status,
			quantity, unit_price, taxes, total_cost, deadline, assigned_to,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	item.ID = uuid.New()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = model.ItemStatusPending
	}
	item.Deadline = utcPtr(item.Deadline)
	item.ComputeTotal()

	_, err := r.db.ExecContext(ctx, r.q(query),
		item.ID,
		item.ProjectID,
		item.Name,
		item.Description,
		item.Supplier,
		item.Phase,
		item.Status,
		item.Quantity,
		item.UnitPrice,
		item.Taxes,
		item.TotalCost,
		item.Deadline,
		item.AssignedTo,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (r *itemRepository) Get(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var row itemRow
	if err := r.db.GetContext(ctx, &row, r.q(itemSelect+` WHERE i.id = ?`), id); err != nil {
		return nil, notFound("item", err)
	}
	return row.toModel(), nil
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) error {
	query := `
		UPDATE items SET
			name = ?,
			description = ?,
			supplier = ?,
			phase = ?,
			status = ?,
			quantity = ?,
			unit_price = ?,
			taxes = ?,
			total_cost = ?,
			deadline = ?,
			assigned_to = ?,
			updated_at = ?
		WHERE id = ?
	`

	item.UpdatedAt = time.Now().UTC()
	item.Deadline = utcPtr(item.Deadline)
	item.ComputeTotal()

	result, err := r.db.ExecContext(ctx, r.q(query),
		item.Name,
		item.Description,
		item.Supplier,
		item.Phase,
		item.Status,
		item.Quantity,
		item.UnitPrice,
		item.Taxes,
		item.TotalCost,
		item.Deadline,
		item.AssignedTo,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return requireAffected(result, "item")
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, r.q(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return requireAffected(result, "item")
}

func (r *itemRepository) List(ctx context.Context, filters *model.ItemFilters) ([]*model.Item, error) {
	query := itemSelect + ` WHERE 1 = 1`
	args := []interface{}{}

	if filters == nil {
		filters = &model.ItemFilters{}
	}
	if filters.ProjectID != uuid.Nil {
		query += " AND i.project_id = ?"
		args = append(args, filters.ProjectID)
	}
	if filters.Status != "" {
		query += " AND i.status = ?"
		args = append(args, filters.Status)
	}
	if filters.AssignedTo != nil {
		query += " AND i.assigned_to = ?"
		args = append(args, *filters.AssignedTo)
	}

	query += " ORDER BY i.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filters.Limit(), filters.Offset())

	return r.selectItems(ctx, query, args...)
}

func (r *itemRepository) ListOpenWithDeadline(ctx context.Context, until time.Time) ([]*model.Item, error) {
	query := itemSelect + `
		WHERE i.deadline IS NOT NULL
		  AND i.deadline <= ?
		  AND i.status <> ?
		ORDER BY i.deadline
	`
	return r.selectItems(ctx, query, until.UTC(), model.ItemStatusCompleted)
}

func (r *itemRepository) selectItems(ctx context.Context, query string, args ...interface{}) ([]*model.Item, error) {
	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, r.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]*model.Item, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toModel())
	}
	return items, nil
}
