package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by CRUD flows
const (
	NotificationItemAssigned          = "item_assigned"
	NotificationItemCreated           = "item_created"
	NotificationProjectCreated        = "project_created"
	NotificationAssignedManager       = "assigned_manager"
	NotificationAssignedManagerAction = "assigned_manager_action"
)

// Notification is a per-user message about a domain event. At most one unread
// notification exists per (user, type, message).
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Message   string    `json:"message" db:"message"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NotificationEvent is the payload pushed to in-app subscribers
type NotificationEvent struct {
	NotificationID uuid.UUID `json:"notification_id"`
	UserID         uuid.UUID `json:"user_id"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}
