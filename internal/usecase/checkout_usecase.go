package usecase

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

var ErrEmptyCart = errors.New("cart is empty")

// 注文とクーポンAPIへの約束
type OrdersAPI interface {
	Create(ctx context.Context, in api.CreateOrderRequest) (model.Order, error)
	Mine(ctx context.Context) ([]model.Order, error)
	ApplyCoupon(ctx context.Context, code string, total float64) (api.ApplyCouponResponse, error)
}

// CheckoutUsecase はローカルカートから注文を起こす。
type CheckoutUsecase struct {
	cartStore repository.CartStore
	orders    OrdersAPI
	log       *slog.Logger
}

func NewCheckoutUsecase(cartStore repository.CartStore, orders OrdersAPI, log *slog.Logger) *CheckoutUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &CheckoutUsecase{
		cartStore: cartStore,
		orders:    orders,
		log:       log,
	}
}

type PlaceOrderInput struct {
	Address    string
	CouponCode string
}

// PlaceOrder は注文を作成し、成功したらローカルカートを空にする。
// local-接頭辞の行はサーバーに存在しないため注文に含めない。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (model.Order, error) {
	lines, err := u.cartStore.Load(ctx)
	if err != nil {
		return model.Order{}, err
	}
	if len(lines) == 0 {
		return model.Order{}, ErrEmptyCart
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.IsLocalOnly() {
			u.log.Warn("skipping local-only line at checkout", "productId", l.ProductID)
			continue
		}
		items = append(items, model.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice(),
			Quantity:  l.Quantity,
		})
	}
	if len(items) == 0 {
		return model.Order{}, ErrEmptyCart
	}

	if in.CouponCode != "" {
		// クーポンはサーバー側で検証される。適用結果の合計は注文APIが再計算する。
		if _, err := u.orders.ApplyCoupon(ctx, in.CouponCode, CartTotal(lines)); err != nil {
			return model.Order{}, err
		}
	}

	order, err := u.orders.Create(ctx, api.CreateOrderRequest{
		Items:      items,
		Address:    in.Address,
		CouponCode: in.CouponCode,
	})
	if err != nil {
		return model.Order{}, err
	}

	if err := u.cartStore.Clear(ctx); err != nil {
		u.log.Warn("failed to clear cart after order", "err", err)
	}
	return order, nil
}

// History は自分の注文履歴。
func (u *CheckoutUsecase) History(ctx context.Context) ([]model.Order, error) {
	return u.orders.Mine(ctx)
}
