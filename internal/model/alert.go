package model

import (
	"time"

	"github.com/google/uuid"
)

// Alert types raised by the deadline check
const (
	AlertTypeDeadlineApproaching = "deadline_approaching"
	AlertTypeOverdue             = "overdue"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Alert flags an item's deadline status. Only IsRead changes after creation.
type Alert struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ItemID      uuid.UUID `json:"item_id" db:"item_id"`
	ProjectID   uuid.UUID `json:"project_id" db:"project_id"`
	Type        string    `json:"type" db:"type"`
	Message     string    `json:"message" db:"message"`
	Severity    Severity  `json:"severity" db:"severity"`
	TriggeredAt time.Time `json:"triggered_at" db:"triggered_at"`
	IsRead      bool      `json:"is_read" db:"is_read"`
}

// AlertFilters narrows alert listings
type AlertFilters struct {
	ProjectID  *uuid.UUID `form:"-"`
	ItemID     *uuid.UUID `form:"-"`
	UnreadOnly bool       `form:"unread"`
	Pagination
}

// DeadlineCheckResult summarises one deadline check run
type DeadlineCheckResult struct {
	ApproachingAlertsCreated int `json:"approaching_alerts_created"`
	OverdueAlertsCreated     int `json:"overdue_alerts_created"`
	Failed                   int `json:"failed"`
}
