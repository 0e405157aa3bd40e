package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"storefront/internal/domain/model"
	"storefront/internal/restclient"
)

// /admin 配下の呼び出し。adminロールのみ。
type AdminAPI struct {
	c *restclient.Client
}

func NewAdminAPI(c *restclient.Client) *AdminAPI {
	return &AdminAPI{c: c}
}

type AdminCounts struct {
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
	Users    int64 `json:"users"`
	Messages int64 `json:"messages"`
}

func (a *AdminAPI) Counts(ctx context.Context) (AdminCounts, error) {
	var out AdminCounts
	err := a.c.DoJSON(ctx, http.MethodGet, "/admin/counts", nil, &out)
	return out, err
}

func (a *AdminAPI) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := a.c.DoJSON(ctx, http.MethodGet, "/admin/users", nil, &out)
	return out, err
}

func (a *AdminAPI) ListOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := a.c.DoJSON(ctx, http.MethodGet, "/admin/orders", nil, &out)
	return out, err
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

func (a *AdminAPI) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (model.Order, error) {
	var out model.Order
	err := a.c.DoJSON(ctx, http.MethodPut, "/orders/"+url.PathEscape(orderID)+"/status",
		UpdateOrderStatusRequest{Status: status}, &out)
	return out, err
}

func (a *AdminAPI) ListMessages(ctx context.Context) ([]model.ContactMessage, error) {
	var out []model.ContactMessage
	err := a.c.DoJSON(ctx, http.MethodGet, "/admin/messages", nil, &out)
	return out, err
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int64
	CategoryID  string
	// ファイル名 → 画像バイト列
	Images map[string][]byte
}

// CreateProduct は商品登録。画像があるためmultipartで送る。
func (a *AdminAPI) CreateProduct(ctx context.Context, in CreateProductInput) (model.Product, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"price":       fmt.Sprintf("%g", in.Price),
		"stock":       fmt.Sprintf("%d", in.Stock),
		"category":    in.CategoryID,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return model.Product{}, err
		}
	}
	for name, data := range in.Images {
		fw, err := w.CreateFormFile("images", name)
		if err != nil {
			return model.Product{}, err
		}
		if _, err := fw.Write(data); err != nil {
			return model.Product{}, err
		}
	}
	if err := w.Close(); err != nil {
		return model.Product{}, err
	}

	var out model.Product
	err := a.c.DoMultipart(ctx, http.MethodPost, "/products", w.FormDataContentType(), buf.Bytes(), &out)
	return out, err
}

func (a *AdminAPI) DeleteProduct(ctx context.Context, id string) error {
	return a.c.DoJSON(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}
