package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/restclient"
)

// /products・/categories・/reviews の公開API。
type CatalogAPI struct {
	c *restclient.Client
}

func NewCatalogAPI(c *restclient.Client) *CatalogAPI {
	return &CatalogAPI{c: c}
}

type ListProductsQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

type ProductListResponse struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
}

func (a *CatalogAPI) ListProducts(ctx context.Context, q ListProductsQuery) (ProductListResponse, error) {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}

	path := "/products"
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}

	var out ProductListResponse
	err := a.c.DoJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (a *CatalogAPI) GetProduct(ctx context.Context, id string) (model.Product, error) {
	var out model.Product
	err := a.c.DoJSON(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (a *CatalogAPI) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := a.c.DoJSON(ctx, http.MethodGet, "/categories", nil, &out)
	return out, err
}

func (a *CatalogAPI) ProductReviews(ctx context.Context, productID string) ([]model.Review, error) {
	var out []model.Review
	err := a.c.DoJSON(ctx, http.MethodGet, "/reviews/product/"+url.PathEscape(productID), nil, &out)
	return out, err
}

type CreateReviewRequest struct {
	ProductID string `json:"product"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (a *CatalogAPI) CreateReview(ctx context.Context, in CreateReviewRequest) (model.Review, error) {
	var out model.Review
	err := a.c.DoJSON(ctx, http.MethodPost, "/reviews", in, &out)
	return out, err
}
