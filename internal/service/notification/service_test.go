package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/procurement-api/internal/model"
	apperrors "github.com/jwalitptl/procurement-api/pkg/errors"
	"github.com/jwalitptl/procurement-api/pkg/logger"
	"github.com/jwalitptl/procurement-api/pkg/metrics"
)

type fakeNotificationRepo struct {
	rows      []*model.Notification
	createErr error
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *n
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeNotificationRepo) FindUnread(_ context.Context, userID uuid.UUID, typ, msg string) (*model.Notification, error) {
	for _, n := range f.rows {
		if n.UserID == userID && n.Type == typ && n.Message == msg && !n.IsRead {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, _ model.Pagination) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range f.rows {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	for _, n := range f.rows {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return apperrors.NotFound("notification", nil)
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) ofType(typ string) []*model.Notification {
	var out []*model.Notification
	for _, n := range f.rows {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type fakeUserRepo struct {
	users []*model.User
	err   error
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error { return nil }
func (f *fakeUserRepo) Get(context.Context, uuid.UUID) (*model.User, error) { return nil, nil }
func (f *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) { return nil, nil }
func (f *fakeUserRepo) List(context.Context, *model.UserFilters) ([]*model.User, error) {
	return f.users, nil
}

func (f *fakeUserRepo) ListByRoles(_ context.Context, roles ...model.Role) ([]*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.User
	for _, u := range f.users {
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type fakePublisher struct {
	channels []string
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, _ interface{}) error {
	f.channels = append(f.channels, channel)
	return f.err
}

func newUser(role model.Role) *model.User {
	return &model.User{Base: model.Base{ID: uuid.New()}, Role: role}
}

type fixture struct {
	repo  *fakeNotificationRepo
	users *fakeUserRepo
	pub   *fakePublisher
	svc   *Service
}

func newFixture(users ...*model.User) *fixture {
	f := &fixture{
		repo:  &fakeNotificationRepo{},
		users: &fakeUserRepo{users: users},
		pub:   &fakePublisher{},
	}
	f.svc = NewService(f.repo, f.users, f.pub, logger.Nop(), metrics.New("test"))
	return f
}

func TestNotify_DeduplicatesUnread(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	first, err := f.svc.Notify(ctx, userID, model.NotificationItemAssigned, "X")
	require.NoError(t, err)
	second, err := f.svc.Notify(ctx, userID, model.NotificationItemAssigned, "X")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.repo.rows, 1)
	assert.Equal(t, []string{"notifications:" + userID.String()}, f.pub.channels)
}

func TestNotify_NewRowAfterRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	first, err := f.svc.Notify(ctx, userID, model.NotificationItemAssigned, "X")
	require.NoError(t, err)
	require.NoError(t, f.svc.MarkRead(ctx, first.ID, userID))

	second, err := f.svc.Notify(ctx, userID, model.NotificationItemAssigned, "X")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, f.repo.rows, 2)
	assert.False(t, second.IsRead)
}

func TestNotify_DistinctMessagesAreSeparate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.Notify(ctx, userID, model.NotificationItemAssigned, "X")
	require.NoError(t, err)
	_, err = f.svc.Notify(ctx, userID, model.NotificationItemAssigned, "Y")
	require.NoError(t, err)
	_, err = f.svc.Notify(ctx, userID, model.NotificationItemCreated, "X")
	require.NoError(t, err)

	assert.Len(t, f.repo.rows, 3)
}

func TestNotify_PublishFailureIgnored(t *testing.T) {
	f := newFixture()
	f.pub.err = errors.New("redis down")

	n, err := f.svc.Notify(context.Background(), uuid.New(), model.NotificationItemAssigned, "X")
	require.NoError(t, err)
	assert.NotNil(t, n)
	assert.Len(t, f.repo.rows, 1)
}

func TestProjectCreated_NotifiesAdminsAndManagers(t *testing.T) {
	admin := newUser(model.RoleAdmin)
	manager := newUser(model.RoleManager)
	f := newFixture(admin, manager, newUser(model.RoleUser))

	f.svc.ProjectCreated(context.Background(), &model.Project{Name: "Fit-out"})

	rows := f.repo.ofType(model.NotificationProjectCreated)
	require.Len(t, rows, 2)
	recipients := []uuid.UUID{rows[0].UserID, rows[1].UserID}
	assert.ElementsMatch(t, []uuid.UUID{admin.ID, manager.ID}, recipients)
	for _, n := range rows {
		assert.Contains(t, n.Message, "Fit-out")
	}
}

func TestItemCreated_Recipients(t *testing.T) {
	admin := newUser(model.RoleAdmin)
	manager := newUser(model.RoleManager)
	worker := newUser(model.RoleUser)
	ctx := context.Background()

	t.Run("assigned", func(t *testing.T) {
		f := newFixture(admin, manager, worker)
		f.svc.ItemCreated(ctx, &model.Item{Name: "Cabling", AssignedTo: &worker.ID})

		require.Len(t, f.repo.rows, 1)
		assert.Equal(t, worker.ID, f.repo.rows[0].UserID)
		assert.Equal(t, model.NotificationItemAssigned, f.repo.rows[0].Type)
	})

	t.Run("unassigned", func(t *testing.T) {
		f := newFixture(admin, manager, worker)
		f.svc.ItemCreated(ctx, &model.Item{Name: "Cabling", ProjectName: "Fit-out"})

		rows := f.repo.ofType(model.NotificationItemCreated)
		require.Len(t, rows, 2)
		assert.Contains(t, rows[0].Message, "Fit-out")
	})
}

func TestManagersUpdated(t *testing.T) {
	ctx := context.Background()
	project := &model.Project{Name: "Fit-out"}
	existing, added, actor := uuid.New(), uuid.New(), uuid.New()

	t.Run("actor confirmed", func(t *testing.T) {
		f := newFixture()
		f.svc.ManagersUpdated(ctx, project, actor, []uuid.UUID{existing}, []uuid.UUID{existing, added})

		assigned := f.repo.ofType(model.NotificationAssignedManager)
		require.Len(t, assigned, 1)
		assert.Equal(t, added, assigned[0].UserID)

		action := f.repo.ofType(model.NotificationAssignedManagerAction)
		require.Len(t, action, 1)
		assert.Equal(t, actor, action[0].UserID)
	})

	t.Run("actor added themselves", func(t *testing.T) {
		f := newFixture()
		f.svc.ManagersUpdated(ctx, project, actor, nil, []uuid.UUID{actor})

		assert.Len(t, f.repo.ofType(model.NotificationAssignedManager), 1)
		assert.Empty(t, f.repo.ofType(model.NotificationAssignedManagerAction))
	})

	t.Run("nothing added", func(t *testing.T) {
		f := newFixture()
		f.svc.ManagersUpdated(ctx, project, actor, []uuid.UUID{existing, added}, []uuid.UUID{added})

		assert.Empty(t, f.repo.rows)
	})
}

func TestFanout_FailuresDoNotEscape(t *testing.T) {
	f := newFixture(newUser(model.RoleAdmin))
	f.users.err = errors.New("db down")

	assert.Zero(t, f.svc.Fanout(context.Background(), RoleSet(model.RoleAdmin), model.NotificationProjectCreated, "x"))

	f.users.err = nil
	f.repo.createErr = errors.New("insert failed")
	assert.Zero(t, f.svc.Fanout(context.Background(), RoleSet(model.RoleAdmin), model.NotificationProjectCreated, "x"))
}

func TestAddedManagers(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	assert.Equal(t, []uuid.UUID{c}, AddedManagers([]uuid.UUID{a, b}, []uuid.UUID{b, c, c}))
	assert.Nil(t, AddedManagers([]uuid.UUID{a}, []uuid.UUID{a}))
	assert.Equal(t, []uuid.UUID{a, b}, AddedManagers(nil, []uuid.UUID{a, b}))
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.Notify(ctx, userID, model.NotificationItemAssigned, "X")
	require.NoError(t, err)
	_, err = f.svc.Notify(ctx, userID, model.NotificationItemAssigned, "Y")
	require.NoError(t, err)

	count, err := f.svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	unread, err := f.svc.ListForUser(ctx, userID, true, model.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, unread)
}
