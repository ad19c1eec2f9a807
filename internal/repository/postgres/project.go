package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/internal/repository"
)

type projectRepository struct {
	BaseRepository
}

func NewProjectRepository(base BaseRepository) repository.ProjectRepository {
	return &projectRepository{base}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	query := `
		INSERT INTO projects (
			id, name, description, status, start_date, end_date,
			created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	project.ID = uuid.New()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = model.ProjectStatusPlanning
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(query),
			project.ID,
			project.Name,
			project.Description,
			project.Status,
			utcPtr(project.StartDate),
			utcPtr(project.EndDate),
			project.CreatedBy,
			project.CreatedAt,
			project.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return insertManagers(ctx, tx, project.ID, project.ManagerIDs, now)
	})
}

func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	query := `SELECT * FROM projects WHERE id = ?`

	var project model.Project
	if err := r.db.GetContext(ctx, &project, r.q(query), id); err != nil {
		return nil, notFound("project", err)
	}

	managers, err := r.ListManagerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	project.ManagerIDs = managers

	return &project, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	query := `
		UPDATE projects SET
			name = ?,
			description = ?,
			status = ?,
			start_date = ?,
			end_date = ?,
			updated_at = ?
		WHERE id = ?
	`

	project.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, r.q(query),
		project.Name,
		project.Description,
		project.Status,
		utcPtr(project.StartDate),
		utcPtr(project.EndDate),
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireAffected(result, "project")
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, r.q(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireAffected(result, "project")
}

func (r *projectRepository) List(ctx context.Context, p model.Pagination) ([]*model.Project, error) {
	query := `SELECT * FROM projects ORDER BY created_at DESC LIMIT ? OFFSET ?`

	var projects []*model.Project
	if err := r.db.SelectContext(ctx, &projects, r.q(query), p.Limit(), p.Offset()); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (r *projectRepository) ListManagerIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM project_managers WHERE project_id = ? ORDER BY created_at, user_id`

	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, r.q(query), projectID); err != nil {
		return nil, fmt.Errorf("failed to list project managers: %w", err)
	}
	return ids, nil
}

func (r *projectRepository) SetManagers(ctx context.Context, projectID uuid.UUID, managerIDs []uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM project_managers WHERE project_id = ?`), projectID); err != nil {
			return fmt.Errorf("failed to clear project managers: %w", err)
		}
		return insertManagers(ctx, tx, projectID, managerIDs, time.Now().UTC())
	})
}

func insertManagers(ctx context.Context, tx *sqlx.Tx, projectID uuid.UUID, managerIDs []uuid.UUID, at time.Time) error {
	query := tx.Rebind(`INSERT INTO project_managers (project_id, user_id, created_at) VALUES (?, ?, ?)`)

	seen := make(map[uuid.UUID]struct{}, len(managerIDs))
	for _, id := range managerIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if _, err := tx.ExecContext(ctx, query, projectID, id, at); err != nil {
			return fmt.Errorf("failed to add project manager: %w", err)
		}
	}
	return nil
}
