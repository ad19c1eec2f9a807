package model

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// Project groups items and is run by one or more managers
type Project struct {
	Base
	Name        string        `json:"name" db:"name" validate:"required,max=200"`
	Description string        `json:"description" db:"description"`
	Status      ProjectStatus `json:"status" db:"status" validate:"oneof=planning active on_hold completed cancelled"`
	StartDate   *time.Time    `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time    `json:"end_date,omitempty" db:"end_date"`
	CreatedBy   *uuid.UUID    `json:"created_by,omitempty" db:"created_by"`
	ManagerIDs  []uuid.UUID   `json:"manager_ids" db:"-"`
}

// CreateProjectRequest represents project creation parameters
type CreateProjectRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	StartDate   *time.Time    `json:"start_date"`
	EndDate     *time.Time    `json:"end_date"`
	ManagerIDs  []uuid.UUID   `json:"manager_ids"`
}

// UpdateProjectRequest represents project update parameters
type UpdateProjectRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Status      *ProjectStatus `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
}

// UpdateManagersRequest replaces the manager list of a project
type UpdateManagersRequest struct {
	ManagerIDs []uuid.UUID `json:"manager_ids"`
}
