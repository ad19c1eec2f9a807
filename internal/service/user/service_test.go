package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/procurement-api/internal/model"
	apperrors "github.com/jwalitptl/procurement-api/pkg/errors"
	"github.com/jwalitptl/procurement-api/pkg/security"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUserRepo) List(_ context.Context, filters *model.UserFilters) ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.users {
		if filters == nil || filters.Role == "" || u.Role == filters.Role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListByRoles(context.Context, ...model.Role) ([]*model.User, error) {
	return nil, nil
}

func newService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewService(repo, security.NewBcryptHasher(bcrypt.MinCost)), repo
}

func TestCreateUser(t *testing.T) {
	svc, repo := newService()

	user, err := svc.CreateUser(context.Background(), &model.CreateUserRequest{
		Name:     " Ana ",
		Email:    "Ana@Example.com",
		Password: "long-enough",
		Role:     model.RoleManager,
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana", user.Name)
	assert.NotEqual(t, "long-enough", user.PasswordHash)
	assert.Len(t, repo.users, 1)
}

func TestCreateUser_Rejections(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &model.CreateUserRequest{Name: "a", Email: "a@example.com", Password: "long-enough", Role: "owner"})
	assert.True(t, isCode(err, apperrors.ErrBadRequest), "unknown role")

	_, err = svc.CreateUser(ctx, &model.CreateUserRequest{Name: "a", Email: "a@example.com", Password: "short", Role: model.RoleUser})
	assert.True(t, isCode(err, apperrors.ErrBadRequest), "short password")

	_, err = svc.CreateUser(ctx, &model.CreateUserRequest{Name: "a", Email: "a@example.com", Password: "long-enough", Role: model.RoleUser})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, &model.CreateUserRequest{Name: "b", Email: "A@example.com", Password: "long-enough", Role: model.RoleUser})
	assert.True(t, isCode(err, apperrors.ErrConflict), "duplicate email")
}

func TestListUsers_RejectsUnknownRole(t *testing.T) {
	svc, _ := newService()

	_, err := svc.ListUsers(context.Background(), &model.UserFilters{Role: "owner"})
	assert.True(t, isCode(err, apperrors.ErrBadRequest))
}

func isCode(err error, code apperrors.ErrorCode) bool {
	appErr, ok := err.(*apperrors.AppError)
	return ok && appErr.Code == code
}
