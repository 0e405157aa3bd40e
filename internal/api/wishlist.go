package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain/model"
	"storefront/internal/restclient"
)

// /wishlist 配下の呼び出し。要ログイン。
type WishlistAPI struct {
	c *restclient.Client
}

func NewWishlistAPI(c *restclient.Client) *WishlistAPI {
	return &WishlistAPI{c: c}
}

type wishlistResponse struct {
	Items []model.WishlistEntry `json:"items"`
}

type addWishlistRequest struct {
	ProductID string `json:"productId"`
}

func (a *WishlistAPI) Get(ctx context.Context) ([]model.WishlistEntry, error) {
	var out wishlistResponse
	if err := a.c.DoJSON(ctx, http.MethodGet, "/wishlist", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (a *WishlistAPI) Add(ctx context.Context, productID string) ([]model.WishlistEntry, error) {
	var out wishlistResponse
	err := a.c.DoJSON(ctx, http.MethodPost, "/wishlist", addWishlistRequest{ProductID: productID}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (a *WishlistAPI) Remove(ctx context.Context, productID string) ([]model.WishlistEntry, error) {
	var out wishlistResponse
	err := a.c.DoJSON(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}
