package project

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

// Notifier receives project events. Implementations must not fail the caller.
type Notifier interface {
	ProjectCreated(ctx context.Context, project *model.Project)
	ManagersUpdated(ctx context.Context, project *model.Project, actorID uuid.UUID, oldIDs, newIDs []uuid.UUID)
}

type Service struct {
	repo     repository.ProjectRepository
	users    repository.UserRepository
	notifier Notifier
	validate *validator.Validate
}

func NewService(repo repository.ProjectRepository, users repository.UserRepository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		validate: validator.New(),
	}
}

func (s *Service) CreateProject(ctx context.Context, actorID uuid.UUID, req *model.CreateProjectRequest) (*model.Project, error) {
	project := &model.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ManagerIDs:  req.ManagerIDs,
	}
	if project.Status == "" {
		project.Status = model.ProjectStatusPlanning
	}
	if actorID != uuid.Nil {
		project.CreatedBy = &actorID
	}

	if err := s.validateProject(project); err != nil {
		return nil, err
	}
	if err := s.checkManagers(ctx, project.ManagerIDs); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.notifier.ProjectCreated(ctx, project)
	s.notifier.ManagersUpdated(ctx, project, actorID, nil, project.ManagerIDs)

	return project, nil
}

func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context, p model.Pagination) ([]*model.Project, error) {
	projects, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *Service) UpdateProject(ctx context.Context, id uuid.UUID, req *model.UpdateProjectRequest) (*model.Project, error) {
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}

	if err := s.validateProject(project); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

func (s *Service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// UpdateManagers replaces the project's managers and notifies newly added ones
func (s *Service) UpdateManagers(ctx context.Context, id, actorID uuid.UUID, managerIDs []uuid.UUID) (*model.Project, error) {
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkManagers(ctx, managerIDs); err != nil {
		return nil, err
	}

	oldIDs := project.ManagerIDs
	if err := s.repo.SetManagers(ctx, id, managerIDs); err != nil {
		return nil, fmt.Errorf("failed to update managers: %w", err)
	}

	updated, err := s.repo.ListManagerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	project.ManagerIDs = updated

	s.notifier.ManagersUpdated(ctx, project, actorID, oldIDs, updated)
	return project, nil
}

func (s *Service) validateProject(project *model.Project) error {
	if err := s.validate.Struct(project); err != nil {
		return apperrors.BadRequest("invalid project", err)
	}
	if project.StartDate != nil && project.EndDate != nil && project.EndDate.Before(*project.StartDate) {
		return apperrors.BadRequest("end date precedes start date", nil)
	}
	return nil
}

// checkManagers requires every id to name an existing admin or manager
func (s *Service) checkManagers(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		user, err := s.users.Get(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.BadRequest(fmt.Sprintf("manager %s does not exist", id), err)
			}
			return err
		}
		if user.Role != model.RoleManager && user.Role != model.RoleAdmin {
			return apperrors.BadRequest(fmt.Sprintf("user %s cannot manage projects", id), nil)
		}
	}
	return nil
}
