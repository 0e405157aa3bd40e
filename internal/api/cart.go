package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain/model"
	"storefront/internal/restclient"
)

// /cart 配下の呼び出し。要ログイン。
type CartAPI struct {
	c *restclient.Client
}

func NewCartAPI(c *restclient.Client) *CartAPI {
	return &CartAPI{c: c}
}

type CartResponse struct {
	Items []model.CartLine `json:"items"`
	Total float64          `json:"total"`
}

type AddCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type UpdateCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type SyncCartRequest struct {
	Items []model.CartLine `json:"items"`
}

func (a *CartAPI) Get(ctx context.Context) ([]model.CartLine, error) {
	var out CartResponse
	if err := a.c.DoJSON(ctx, http.MethodGet, "/cart", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (a *CartAPI) Add(ctx context.Context, productID string, quantity int64) ([]model.CartLine, error) {
	var out CartResponse
	err := a.c.DoJSON(ctx, http.MethodPost, "/cart/add", AddCartRequest{ProductID: productID, Quantity: quantity}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (a *CartAPI) Update(ctx context.Context, productID string, quantity int64) ([]model.CartLine, error) {
	var out CartResponse
	err := a.c.DoJSON(ctx, http.MethodPut, "/cart/update", UpdateCartRequest{ProductID: productID, Quantity: quantity}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (a *CartAPI) Remove(ctx context.Context, productID string) ([]model.CartLine, error) {
	var out CartResponse
	err := a.c.DoJSON(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(productID), nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (a *CartAPI) Clear(ctx context.Context) error {
	return a.c.DoJSON(ctx, http.MethodDelete, "/cart/clear", nil, nil)
}

// Sync はローカルだけに存在する行をまとめてサーバーへ送る
func (a *CartAPI) Sync(ctx context.Context, lines []model.CartLine) ([]model.CartLine, error) {
	var out CartResponse
	err := a.c.DoJSON(ctx, http.MethodPost, "/cart/sync", SyncCartRequest{Items: lines}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}
