package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/model"
	"storefront/internal/infra/store"
	"storefront/internal/repository"
)

func openStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Cart_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	// 未保存は空カート
	lines, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	in := []model.CartLine{
		{ProductID: "p1", Name: "Mug", Price: 12.5, Quantity: 2, Stock: 9},
		{ProductID: "p2", Name: "Shirt", Price: 30, Quantity: 1, Stock: 3, Dirty: true},
	}
	require.NoError(t, s.Save(ctx, in))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSQLiteStore_Save_ReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.Save(ctx, []model.CartLine{
		{ProductID: "p1", Name: "Mug", Price: 12.5, Quantity: 2},
		{ProductID: "p2", Name: "Shirt", Price: 30, Quantity: 1},
	}))
	require.NoError(t, s.Save(ctx, []model.CartLine{
		{ProductID: "p3", Name: "Hat", Price: 8, Quantity: 1},
	}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p3", got[0].ProductID)
}

func TestSQLiteStore_Cart_Clear(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.Save(ctx, []model.CartLine{{ProductID: "p1", Name: "Mug", Quantity: 1}}))
	require.NoError(t, s.Clear(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_Wishlist_RoundTrip(t *testing.T) {
	ctx := context.Background()
	w := openStore(t).Wishlist()

	in := []model.WishlistEntry{
		{ProductID: "p1", Name: "Mug", Price: 12.5},
	}
	require.NoError(t, w.Save(ctx, in))

	got, err := w.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSQLiteStore_Session(t *testing.T) {
	ctx := context.Background()
	v := openStore(t).Session()

	_, err := v.Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, v.SaveToken(ctx, "jwt-token"))
	require.NoError(t, v.SaveUser(ctx, model.User{ID: "u1", Name: "Taro", Role: model.RoleUser}))

	token, err := v.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)

	u, err := v.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Taro", u.Name)

	// Clearはtokenとuserをまとめて消すが、カートには触れない
	require.NoError(t, v.Clear(ctx))
	_, err = v.Token(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = v.User(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSQLiteStore_SessionClear_KeepsCart(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.Save(ctx, []model.CartLine{{ProductID: "p1", Name: "Mug", Quantity: 1}}))
	require.NoError(t, s.Session().SaveToken(ctx, "jwt-token"))
	require.NoError(t, s.Session().Clear(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteStore_ReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.db")

	s1, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Save(ctx, []model.CartLine{{ProductID: "p1", Name: "Mug", Quantity: 2}}))
	require.NoError(t, s1.Close())

	s2, err := store.Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Quantity)
}
