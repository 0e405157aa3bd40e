package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	"storefront/internal/infra/store"
	"storefront/internal/restclient"
	"storefront/internal/usecase"
)

type OrdersAPIMock struct{ mock.Mock }

func (m *OrdersAPIMock) Create(ctx context.Context, in api.CreateOrderRequest) (model.Order, error) {
	args := m.Called(ctx, in)
	order, _ := args.Get(0).(model.Order)
	return order, args.Error(1)
}

func (m *OrdersAPIMock) Mine(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrdersAPIMock) ApplyCoupon(ctx context.Context, code string, total float64) (api.ApplyCouponResponse, error) {
	args := m.Called(ctx, code, total)
	out, _ := args.Get(0).(api.ApplyCouponResponse)
	return out, args.Error(1)
}

func TestCheckoutUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewCheckoutUsecase(store.NewMemoryStore(), new(OrdersAPIMock), nil)

	_, err := uc.PlaceOrder(ctx, usecase.PlaceOrderInput{Address: "Tokyo"})
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
}

func TestCheckoutUsecase_PlaceOrder_SkipsLocalOnlyLines(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Save(ctx, []model.CartLine{
		{ProductID: "p1", Name: "Mug", Price: 10, Quantity: 2},
		{ProductID: model.LocalIDPrefix + "d1", Name: "Draft", Price: 99, Quantity: 1},
	}))

	apiMock := new(OrdersAPIMock)
	apiMock.On("Create", mock.Anything, mock.MatchedBy(func(in api.CreateOrderRequest) bool {
		return len(in.Items) == 1 && in.Items[0].ProductID == "p1"
	})).Return(model.Order{ID: "o1", Status: model.OrderStatusPending}, nil)

	uc := usecase.NewCheckoutUsecase(mem, apiMock, nil)
	order, err := uc.PlaceOrder(ctx, usecase.PlaceOrderInput{Address: "Tokyo"})

	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)

	// 成功後はローカルカートが空になる
	lines, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
	apiMock.AssertExpectations(t)
}

func TestCheckoutUsecase_PlaceOrder_LocalOnlyCartOnly(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Save(ctx, []model.CartLine{
		{ProductID: model.LocalIDPrefix + "d1", Name: "Draft", Price: 99, Quantity: 1},
	}))

	uc := usecase.NewCheckoutUsecase(mem, new(OrdersAPIMock), nil)
	_, err := uc.PlaceOrder(ctx, usecase.PlaceOrderInput{Address: "Tokyo"})

	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
}

func TestCheckoutUsecase_PlaceOrder_InvalidCoupon_KeepsCart(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Save(ctx, []model.CartLine{
		{ProductID: "p1", Name: "Mug", Price: 10, Quantity: 1},
	}))

	apiMock := new(OrdersAPIMock)
	apiMock.On("ApplyCoupon", mock.Anything, "NOPE", 10.0).
		Return(api.ApplyCouponResponse{}, &restclient.APIError{Status: 400, Message: "invalid coupon"})

	uc := usecase.NewCheckoutUsecase(mem, apiMock, nil)
	_, err := uc.PlaceOrder(ctx, usecase.PlaceOrderInput{Address: "Tokyo", CouponCode: "NOPE"})

	require.Error(t, err)
	lines, loadErr := mem.Load(ctx)
	require.NoError(t, loadErr)
	assert.Len(t, lines, 1)
}
