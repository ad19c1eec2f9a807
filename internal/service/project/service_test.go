package project

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/procurement-api/internal/model"
	apperrors "github.com/jwalitptl/procurement-api/pkg/errors"
)

type fakeProjectRepo struct {
	projects map[uuid.UUID]*model.Project
}

func (f *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	p.ID = uuid.New()
	stored := *p
	f.projects[p.ID] = &stored
	return nil
}

func (f *fakeProjectRepo) Get(_ context.Context, id uuid.UUID) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, apperrors.NotFound("project", nil)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, p *model.Project) error {
	stored := *p
	f.projects[p.ID] = &stored
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectRepo) List(context.Context, model.Pagination) ([]*model.Project, error) {
	var out []*model.Project
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjectRepo) ListManagerIDs(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return f.projects[id].ManagerIDs, nil
}

func (f *fakeProjectRepo) SetManagers(_ context.Context, id uuid.UUID, ids []uuid.UUID) error {
	f.projects[id].ManagerIDs = ids
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error { return nil }
func (f *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) { return nil, nil }
func (f *fakeUserRepo) List(context.Context, *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) ListByRoles(context.Context, ...model.Role) ([]*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user", nil)
}

type managerCall struct {
	actor          uuid.UUID
	oldIDs, newIDs []uuid.UUID
}

type fakeNotifier struct {
	created  []*model.Project
	managers []managerCall
}

func (f *fakeNotifier) ProjectCreated(_ context.Context, p *model.Project) {
	f.created = append(f.created, p)
}

func (f *fakeNotifier) ManagersUpdated(_ context.Context, _ *model.Project, actor uuid.UUID, oldIDs, newIDs []uuid.UUID) {
	f.managers = append(f.managers, managerCall{actor, oldIDs, newIDs})
}

type fixture struct {
	svc      *Service
	repo     *fakeProjectRepo
	notifier *fakeNotifier
	manager  *model.User
	worker   *model.User
}

func newFixture() *fixture {
	manager := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleManager}
	worker := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleUser}
	f := &fixture{
		repo:     &fakeProjectRepo{projects: map[uuid.UUID]*model.Project{}},
		notifier: &fakeNotifier{},
		manager:  manager,
		worker:   worker,
	}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{manager.ID: manager, worker.ID: worker}}
	f.svc = NewService(f.repo, users, f.notifier)
	return f
}

func TestCreateProject_Notifies(t *testing.T) {
	f := newFixture()
	actor := uuid.New()

	project, err := f.svc.CreateProject(context.Background(), actor, &model.CreateProjectRequest{
		Name:       "Fit-out",
		ManagerIDs: []uuid.UUID{f.manager.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ProjectStatusPlanning, project.Status)
	require.NotNil(t, project.CreatedBy)
	assert.Equal(t, actor, *project.CreatedBy)

	require.Len(t, f.notifier.created, 1)
	require.Len(t, f.notifier.managers, 1)
	assert.Empty(t, f.notifier.managers[0].oldIDs)
	assert.Equal(t, []uuid.UUID{f.manager.ID}, f.notifier.managers[0].newIDs)
}

func TestCreateProject_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateProject(ctx, uuid.New(), &model.CreateProjectRequest{Name: "  "})
	assert.Error(t, err)

	_, err = f.svc.CreateProject(ctx, uuid.New(), &model.CreateProjectRequest{Name: "x", Status: "archived"})
	assert.Error(t, err)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = f.svc.CreateProject(ctx, uuid.New(), &model.CreateProjectRequest{Name: "x", StartDate: &start, EndDate: &end})
	assert.Error(t, err)

	_, err = f.svc.CreateProject(ctx, uuid.New(), &model.CreateProjectRequest{Name: "x", ManagerIDs: []uuid.UUID{f.worker.ID}})
	assert.Error(t, err, "plain users cannot manage")

	_, err = f.svc.CreateProject(ctx, uuid.New(), &model.CreateProjectRequest{Name: "x", ManagerIDs: []uuid.UUID{uuid.New()}})
	assert.Error(t, err, "unknown manager")

	assert.Empty(t, f.repo.projects)
	assert.Empty(t, f.notifier.created)
}

func TestUpdateManagers_PassesDiffInputs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := uuid.New()

	project, err := f.svc.CreateProject(ctx, actor, &model.CreateProjectRequest{Name: "Fit-out"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateManagers(ctx, project.ID, actor, []uuid.UUID{f.manager.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.manager.ID}, updated.ManagerIDs)

	last := f.notifier.managers[len(f.notifier.managers)-1]
	assert.Equal(t, actor, last.actor)
	assert.Empty(t, last.oldIDs)
	assert.Equal(t, []uuid.UUID{f.manager.ID}, last.newIDs)
}

func TestUpdateProject_Partial(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	project, err := f.svc.CreateProject(ctx, uuid.New(), &model.CreateProjectRequest{Name: "Fit-out", Description: "floor 3"})
	require.NoError(t, err)

	status := model.ProjectStatusActive
	updated, err := f.svc.UpdateProject(ctx, project.ID, &model.UpdateProjectRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusActive, updated.Status)
	assert.Equal(t, "floor 3", updated.Description)

	_, err = f.svc.UpdateProject(ctx, uuid.New(), &model.UpdateProjectRequest{})
	assert.True(t, apperrors.IsNotFound(err))
}
