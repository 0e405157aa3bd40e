package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain/model"
	"storefront/internal/restclient"
)

// /orders・/coupons 配下の呼び出し。
type OrdersAPI struct {
	c *restclient.Client
}

func NewOrdersAPI(c *restclient.Client) *OrdersAPI {
	return &OrdersAPI{c: c}
}

type CreateOrderRequest struct {
	Items      []model.OrderItem `json:"items"`
	Address    string            `json:"address"`
	CouponCode string            `json:"couponCode,omitempty"`
}

func (a *OrdersAPI) Create(ctx context.Context, in CreateOrderRequest) (model.Order, error) {
	var out model.Order
	err := a.c.DoJSON(ctx, http.MethodPost, "/orders", in, &out)
	return out, err
}

func (a *OrdersAPI) Mine(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := a.c.DoJSON(ctx, http.MethodGet, "/orders/me", nil, &out)
	return out, err
}

func (a *OrdersAPI) Get(ctx context.Context, id string) (model.Order, error) {
	var out model.Order
	err := a.c.DoJSON(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &out)
	return out, err
}

type ApplyCouponRequest struct {
	Code  string  `json:"code"`
	Total float64 `json:"total"`
}

type ApplyCouponResponse struct {
	Discount float64 `json:"discount"` // 割引率（%）
	Total    float64 `json:"total"`    // 割引後合計
}

func (a *OrdersAPI) ApplyCoupon(ctx context.Context, code string, total float64) (ApplyCouponResponse, error) {
	var out ApplyCouponResponse
	err := a.c.DoJSON(ctx, http.MethodPost, "/coupons/apply", ApplyCouponRequest{Code: code, Total: total}, &out)
	return out, err
}

type CustomOrderRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

func (a *OrdersAPI) CreateCustomOrder(ctx context.Context, in CustomOrderRequest) error {
	return a.c.DoJSON(ctx, http.MethodPost, "/custom-orders", in, nil)
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (a *OrdersAPI) SendContact(ctx context.Context, in ContactRequest) error {
	return a.c.DoJSON(ctx, http.MethodPost, "/contact", in, nil)
}
