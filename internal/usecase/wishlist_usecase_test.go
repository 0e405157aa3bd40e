package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
	"storefront/internal/infra/store"
	"storefront/internal/restclient"
	"storefront/internal/usecase"
)

type WishlistAPIMock struct{ mock.Mock }

func (m *WishlistAPIMock) Get(ctx context.Context) ([]model.WishlistEntry, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]model.WishlistEntry)
	return out, args.Error(1)
}

func (m *WishlistAPIMock) Add(ctx context.Context, productID string) ([]model.WishlistEntry, error) {
	args := m.Called(ctx, productID)
	out, _ := args.Get(0).([]model.WishlistEntry)
	return out, args.Error(1)
}

func (m *WishlistAPIMock) Remove(ctx context.Context, productID string) ([]model.WishlistEntry, error) {
	args := m.Called(ctx, productID)
	out, _ := args.Get(0).([]model.WishlistEntry)
	return out, args.Error(1)
}

func newWishlistUC(t *testing.T, mem *store.MemoryStore, apiMock *WishlistAPIMock) *usecase.WishlistUsecase {
	t.Helper()
	return usecase.NewWishlistUsecase(mem.Wishlist(), mem.Session(), apiMock, &fixedClock{t: testNow}, nil)
}

func TestWishlistUsecase_Add_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	uc := newWishlistUC(t, mem, new(WishlistAPIMock))

	_, err := uc.Add(ctx, product("p1", 5))
	require.NoError(t, err)
	entries, err := uc.Add(ctx, product("p1", 5))
	require.NoError(t, err)

	assert.Len(t, entries, 1)
}

func TestWishlistUsecase_Toggle(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	uc := newWishlistUC(t, mem, new(WishlistAPIMock))

	in, err := uc.Toggle(ctx, product("p1", 5))
	require.NoError(t, err)
	assert.True(t, in)

	in, err = uc.Toggle(ctx, product("p1", 5))
	require.NoError(t, err)
	assert.False(t, in)

	entries, err := uc.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWishlistUsecase_Reconcile_SyncsLocalOnlyEntries(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Session().SaveToken(ctx, signedToken(t, testNow.Add(time.Hour), "user")))
	require.NoError(t, mem.Wishlist().Save(ctx, []model.WishlistEntry{
		{ProductID: "p1", Name: "Local", Price: 5},
		{ProductID: model.LocalIDPrefix + "d1", Name: "Draft"},
	}))

	apiMock := new(WishlistAPIMock)
	apiMock.On("Get", mock.Anything).Return([]model.WishlistEntry{
		{ProductID: "p2", Name: "Remote", Price: 9},
	}, nil)
	apiMock.On("Add", mock.Anything, "p1").Return([]model.WishlistEntry{}, nil)

	uc := newWishlistUC(t, mem, apiMock)
	entries, err := uc.Reconcile(ctx)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "p2", entries[0].ProductID)
	assert.Equal(t, "p1", entries[1].ProductID)
	apiMock.AssertExpectations(t)
}

func TestWishlistUsecase_Reconcile_AddFailure_MarksDirty(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Session().SaveToken(ctx, signedToken(t, testNow.Add(time.Hour), "user")))
	require.NoError(t, mem.Wishlist().Save(ctx, []model.WishlistEntry{
		{ProductID: "p1", Name: "Local", Price: 5},
	}))

	apiMock := new(WishlistAPIMock)
	apiMock.On("Get", mock.Anything).Return([]model.WishlistEntry{}, nil)
	apiMock.On("Add", mock.Anything, "p1").
		Return(nil, &restclient.NetworkError{Err: context.DeadlineExceeded})

	uc := newWishlistUC(t, mem, apiMock)
	entries, err := uc.Reconcile(ctx)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Dirty)
}
