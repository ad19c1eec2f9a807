package item

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/internal/repository"
	apperrors "github.com/jwalitptl/procurement-api/pkg/errors"
)

// Notifier receives item events. Implementations must not fail the caller.
type Notifier interface {
	ItemCreated(ctx context.Context, item *model.Item)
	ItemAssigned(ctx context.Context, item *model.Item)
}

type Service struct {
	items    repository.ItemRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	notifier Notifier
	validate *validator.Validate
}

func NewService(items repository.ItemRepository, projects repository.ProjectRepository, users repository.UserRepository, notifier Notifier) *Service {
	return &Service{
		items:    items,
		projects: projects,
		users:    users,
		notifier: notifier,
		validate: validator.New(),
	}
}

func (s *Service) CreateItem(ctx context.Context, projectID uuid.UUID, req *model.CreateItemRequest) (*model.Item, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	item := &model.Item{
		ProjectID:   projectID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Supplier:    req.Supplier,
		Phase:       req.Phase,
		Status:      req.Status,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Taxes:       req.Taxes,
		Deadline:    req.Deadline,
		AssignedTo:  req.AssignedTo,
	}
	if item.Status == "" {
		item.Status = model.ItemStatusPending
	}

	if err := s.validateItem(ctx, item); err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	item.ProjectName = project.Name

	s.notifier.ItemCreated(ctx, item)
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	return s.items.Get(ctx, id)
}

func (s *Service) ListItems(ctx context.Context, filters *model.ItemFilters) ([]*model.Item, error) {
	items, err := s.items.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// UpdateItem applies the non-nil fields of req. A change of assignee to a
// different user notifies that user.
func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, req *model.UpdateItemRequest) (*model.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := item.AssignedTo

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Supplier != nil {
		item.Supplier = *req.Supplier
	}
	if req.Phase != nil {
		item.Phase = *req.Phase
	}
	if req.Status != nil {
		item.Status = *req.Status
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.Taxes != nil {
		item.Taxes = *req.Taxes
	}
	if req.Deadline != nil {
		item.Deadline = req.Deadline
	}
	if req.AssignedTo != nil {
		item.AssignedTo = req.AssignedTo
	}

	if err := s.validateItem(ctx, item); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if item.AssignedTo != nil && (previous == nil || *previous != *item.AssignedTo) {
		item.Assignee = nil
		s.notifier.ItemAssigned(ctx, item)
	}
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.items.Delete(ctx, id)
}

func (s *Service) validateItem(ctx context.Context, item *model.Item) error {
	if err := s.validate.Struct(item); err != nil {
		return apperrors.BadRequest("invalid item", err)
	}
	if item.AssignedTo != nil {
		if _, err := s.users.Get(ctx, *item.AssignedTo); err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.BadRequest("assignee does not exist", err)
			}
			return err
		}
	}
	return nil
}
