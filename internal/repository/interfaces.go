package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/procurement-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
		ListByRoles(ctx context.Context, roles ...model.Role) ([]*model.User, error)
	}

	ProjectRepository interface {
		Create(ctx context.Context, project *model.Project) error
		Get(ctx context.Context, id uuid.UUID) (*model.Project, error)
		Update(ctx context.Context, project *model.Project) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, p model.Pagination) ([]*model.Project, error)
		ListManagerIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
		SetManagers(ctx context.Context, projectID uuid.UUID, managerIDs []uuid.UUID) error
	}

	ItemRepository interface {
		Create(ctx context.Context, item *model.Item) error
		Get(ctx context.Context, id uuid.UUID) (*model.Item, error)
		Update(ctx context.Context, item *model.Item) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.ItemFilters) ([]*model.Item, error)
		// ListOpenWithDeadline returns items that are not completed and have a
		// deadline at or before until, with project name and assignee loaded.
		ListOpenWithDeadline(ctx context.Context, until time.Time) ([]*model.Item, error)
	}

	AlertRepository interface {
		Create(ctx context.Context, alert *model.Alert) error
		// ExistsInWindow reports whether an alert of alertType for itemID was
		// triggered in [from, to).
		ExistsInWindow(ctx context.Context, itemID uuid.UUID, alertType string, from, to time.Time) (bool, error)
		List(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		// FindUnread returns the unread notification matching (userID, type,
		// message), or nil when there is none.
		FindUnread(ctx context.Context, userID uuid.UUID, notificationType, message string) (*model.Notification, error)
		ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, p model.Pagination) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id, userID uuid.UUID) error
		MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	}
)
