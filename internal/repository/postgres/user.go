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

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.q(query),
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT * FROM users WHERE id = ?`

	var user model.User
	if err := r.db.GetContext(ctx, &user, r.q(query), id); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM users WHERE email = ?`

	var user model.User
	if err := r.db.GetContext(ctx, &user, r.q(query), email); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	query := `SELECT * FROM users WHERE 1 = 1`
	args := []interface{}{}

	if filters == nil {
		filters = &model.UserFilters{}
	}
	if filters.Role != "" {
		query += " AND role = ?"
		args = append(args, filters.Role)
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filters.Limit(), filters.Offset())

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, r.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) ListByRoles(ctx context.Context, roles ...model.Role) ([]*model.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM users WHERE role IN (?) ORDER BY created_at`, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to build role query: %w", err)
	}

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, r.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return users, nil
}
