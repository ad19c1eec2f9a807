package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusInProgress ItemStatus = "in_progress"
	ItemStatusCompleted  ItemStatus = "completed"
	ItemStatusOnHold     ItemStatus = "on_hold"
	ItemStatusCancelled  ItemStatus = "cancelled"
)

// Item is a procurement line item belonging to a project
type Item struct {
	Base
	ProjectID   uuid.UUID  `json:"project_id" db:"project_id" validate:"required"`
	Name        string     `json:"name" db:"name" validate:"required,max=200"`
	Description string     `json:"description" db:"description"`
	Supplier    string     `json:"supplier" db:"supplier"`
	Phase       string     `json:"phase" db:"phase"`
	Status      ItemStatus `json:"status" db:"status" validate:"oneof=pending in_progress completed on_hold cancelled"`
	Quantity    int        `json:"quantity" db:"quantity" validate:"gte=0"`
	UnitPrice   float64    `json:"unit_price" db:"unit_price" validate:"gte=0"`
	Taxes       float64    `json:"taxes" db:"taxes" validate:"gte=0"`
	TotalCost   float64    `json:"total_cost" db:"total_cost"`
	Deadline    *time.Time `json:"deadline,omitempty" db:"deadline"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" db:"assigned_to"`

	// Loaded alongside the item by list queries
	ProjectName string   `json:"project_name,omitempty" db:"-"`
	Assignee    *UserRef `json:"assignee,omitempty" db:"-"`
}

// ComputeTotal sets TotalCost from quantity, unit price and taxes, rounded to cents.
func (i *Item) ComputeTotal() {
	i.TotalCost = math.Round((float64(i.Quantity)*i.UnitPrice+i.Taxes)*100) / 100
}

// ItemFilters narrows item listings
type ItemFilters struct {
	ProjectID  uuid.UUID  `form:"-"`
	Status     ItemStatus `form:"status"`
	AssignedTo *uuid.UUID `form:"-"`
	Pagination
}

// CreateItemRequest represents item creation parameters
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Supplier    string     `json:"supplier"`
	Phase       string     `json:"phase"`
	Status      ItemStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed on_hold cancelled"`
	Quantity    int        `json:"quantity" binding:"gte=0"`
	UnitPrice   float64    `json:"unit_price" binding:"gte=0"`
	Taxes       float64    `json:"taxes" binding:"gte=0"`
	Deadline    *time.Time `json:"deadline"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
}

// UpdateItemRequest represents item update parameters; nil fields are left unchanged
type UpdateItemRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Supplier    *string     `json:"supplier"`
	Phase       *string     `json:"phase"`
	Status      *ItemStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed on_hold cancelled"`
	Quantity    *int        `json:"quantity" binding:"omitempty,gte=0"`
	UnitPrice   *float64    `json:"unit_price" binding:"omitempty,gte=0"`
	Taxes       *float64    `json:"taxes" binding:"omitempty,gte=0"`
	Deadline    *time.Time  `json:"deadline"`
	AssignedTo  *uuid.UUID  `json:"assigned_to"`
}
