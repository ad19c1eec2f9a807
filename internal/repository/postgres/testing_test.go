package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/procurement-api/internal/config"
	"github.com/jwalitptl/procurement-api/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := NewDB(config.DatabaseConfig{Driver: DriverSQLite, Path: ":memory:", AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sqlx.DB, name string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, NewUserRepository(NewBaseRepository(db)).Create(context.Background(), user))
	return user
}

func seedProject(t *testing.T, db *sqlx.DB, name string) *model.Project {
	t.Helper()
	project := &model.Project{Name: name}
	require.NoError(t, NewProjectRepository(NewBaseRepository(db)).Create(context.Background(), project))
	return project
}

func seedItem(t *testing.T, db *sqlx.DB, projectID uuid.UUID, name string, status model.ItemStatus, deadline *time.Time, assignee *uuid.UUID) *model.Item {
	t.Helper()
	item := &model.Item{
		ProjectID:  projectID,
		Name:       name,
		Status:     status,
		Quantity:   1,
		UnitPrice:  10,
		Deadline:   deadline,
		AssignedTo: assignee,
	}
	require.NoError(t, NewItemRepository(NewBaseRepository(db)).Create(context.Background(), item))
	return item
}
