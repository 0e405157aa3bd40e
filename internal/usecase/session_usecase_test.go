package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	"storefront/internal/infra/store"
	"storefront/internal/repository"
	"storefront/internal/restclient"
	"storefront/internal/usecase"
)

type AuthAPIMock struct{ mock.Mock }

func (m *AuthAPIMock) Login(ctx context.Context, email, password string) (api.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	out, _ := args.Get(0).(api.LoginResponse)
	return out, args.Error(1)
}

func (m *AuthAPIMock) Register(ctx context.Context, in api.RegisterRequest) (model.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *AuthAPIMock) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *AuthAPIMock) Me(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func newSessionUC(t *testing.T, mem *store.MemoryStore, apiMock *AuthAPIMock) *usecase.SessionUsecase {
	t.Helper()
	return usecase.NewSessionUsecase(mem.Session(), apiMock, &fixedClock{t: testNow}, nil)
}

func TestSessionUsecase_Current_NoToken_IsGuest(t *testing.T) {
	mem := store.NewMemoryStore()
	uc := newSessionUC(t, mem, new(AuthAPIMock))

	sess := uc.Current(context.Background())
	assert.Equal(t, model.SessionGuest, sess.State)
}

func TestSessionUsecase_Current_ExpiredToken_ClearsAndGoesGuest(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Session().SaveToken(ctx, signedToken(t, testNow.Add(-time.Minute), "user")))

	apiMock := new(AuthAPIMock) // 期限切れ判定にネットワークは使わない
	uc := newSessionUC(t, mem, apiMock)

	sess := uc.Current(ctx)
	assert.Equal(t, model.SessionGuest, sess.State)

	_, err := mem.Session().Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	apiMock.AssertExpectations(t)
}

func TestSessionUsecase_Current_AdminRoleFromClaim(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Session().SaveToken(ctx, signedToken(t, testNow.Add(time.Hour), "admin")))

	uc := newSessionUC(t, mem, new(AuthAPIMock))
	sess := uc.Current(ctx)

	assert.Equal(t, model.SessionAdmin, sess.State)
	assert.True(t, sess.IsAdmin())
}

func TestSessionUsecase_Revalidate_AuthError_GoesGuest(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Session().SaveToken(ctx, signedToken(t, testNow.Add(time.Hour), "user")))

	apiMock := new(AuthAPIMock)
	apiMock.On("Me", mock.Anything).Return(model.User{}, &restclient.AuthError{Status: 401})

	uc := newSessionUC(t, mem, apiMock)
	sess, err := uc.Revalidate(ctx)

	require.NoError(t, err)
	assert.Equal(t, model.SessionGuest, sess.State)
}

func TestSessionUsecase_Revalidate_NetworkError_KeepsCachedSession(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Session().SaveToken(ctx, signedToken(t, testNow.Add(time.Hour), "user")))
	require.NoError(t, mem.Session().SaveUser(ctx, model.User{ID: "u1", Name: "Taro", Role: model.RoleUser}))

	apiMock := new(AuthAPIMock)
	apiMock.On("Me", mock.Anything).Return(model.User{}, &restclient.NetworkError{Err: context.DeadlineExceeded})

	uc := newSessionUC(t, mem, apiMock)
	sess, err := uc.Revalidate(ctx)

	require.NoError(t, err)
	assert.Equal(t, model.SessionCustomer, sess.State)
	require.NotNil(t, sess.User)
	assert.Equal(t, "u1", sess.User.ID)
}

func TestSessionUsecase_Revalidate_RefreshesCachedUser(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Session().SaveToken(ctx, signedToken(t, testNow.Add(time.Hour), "user")))

	apiMock := new(AuthAPIMock)
	apiMock.On("Me", mock.Anything).Return(model.User{ID: "u1", Name: "Taro", Role: model.RoleAdmin}, nil)

	uc := newSessionUC(t, mem, apiMock)
	sess, err := uc.Revalidate(ctx)

	require.NoError(t, err)
	assert.Equal(t, model.SessionAdmin, sess.State)

	cached, err := mem.Session().User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Taro", cached.Name)
}

func TestSessionUsecase_Login_CachesTokenAndUser(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()

	token := signedToken(t, testNow.Add(time.Hour), "user")
	apiMock := new(AuthAPIMock)
	apiMock.On("Login", mock.Anything, "taro@example.com", "password123").Return(api.LoginResponse{
		User:  model.User{ID: "u1", Name: "Taro", Email: "taro@example.com", Role: model.RoleUser},
		Token: token,
	}, nil)

	uc := newSessionUC(t, mem, apiMock)
	sess, err := uc.Login(ctx, "taro@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, model.SessionCustomer, sess.State)
	assert.Equal(t, token, sess.Token)

	got, err := mem.Session().Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestSessionUsecase_Logout_ClearsCacheEvenIfRemoteFails(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Session().SaveToken(ctx, signedToken(t, testNow.Add(time.Hour), "user")))

	apiMock := new(AuthAPIMock)
	apiMock.On("Logout", mock.Anything).Return(&restclient.NetworkError{Err: context.DeadlineExceeded})

	uc := newSessionUC(t, mem, apiMock)
	require.NoError(t, uc.Logout(ctx))

	_, err := mem.Session().Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
