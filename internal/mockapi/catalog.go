package mockapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storefront/internal/domain/model"
)

// SeedProducts はテスト・開発用に初期カタログを入れる。IDが空なら採番する。
func (s *Server) SeedProducts(products ...model.Product) []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range products {
		if products[i].ID == "" {
			products[i].ID = uuid.NewString()
		}
		if products[i].CreatedAt.IsZero() {
			products[i].CreatedAt = time.Now()
		}
		s.products = append(s.products, products[i])
	}
	return products
}

// SeedCoupon はクーポンを入れる。
func (s *Server) SeedCoupon(code string, discount float64, expiresAt time.Time) model.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := model.Coupon{
		ID:        uuid.NewString(),
		Code:      code,
		Discount:  discount,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	s.coupons = append(s.coupons, c)
	return c
}

type productListResponse struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
}

func (s *Server) listProducts(c echo.Context) error {
	q := strings.ToLower(c.QueryParam("q"))
	category := c.QueryParam("category")
	sortKey := c.QueryParam("sort")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if category != "" && p.CategoryID != category {
			continue
		}
		items = append(items, p)
	}

	switch sortKey {
	case "price_asc":
		sort.Slice(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	case "price_desc":
		sort.Slice(items, func(i, j int) bool { return items[i].Price > items[j].Price })
	default:
		sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	}

	total := int64(len(items))
	start := (page - 1) * limit
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	return c.JSON(http.StatusOK, productListResponse{Items: items[start:end], Total: total})
}

func (s *Server) getProduct(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return c.JSON(http.StatusOK, p)
		}
	}
	return c.JSON(http.StatusNotFound, errorJSON("product not found"))
}

// 商品登録はmultipart（画像フィールドを含むため）。
func (s *Server) createProduct(c echo.Context) error {
	name := c.FormValue("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, errorJSON("name is required"))
	}
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil || price < 0 {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid price"))
	}
	stock, err := strconv.ParseInt(c.FormValue("stock"), 10, 64)
	if err != nil || stock < 0 {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid stock"))
	}

	p := model.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: c.FormValue("description"),
		Price:       price,
		Stock:       stock,
		CategoryID:  c.FormValue("category"),
		CreatedAt:   time.Now(),
	}

	// 画像本体は保存せずファイル名だけ控える
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["images"] {
			p.Images = append(p.Images, fh.Filename)
		}
	}

	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, p)
}

func (s *Server) deleteProduct(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
		}
	}
	return c.JSON(http.StatusNotFound, errorJSON("product not found"))
}

func (s *Server) listCategories(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	out := []model.Category{}
	for _, p := range s.products {
		if p.CategoryID == "" || seen[p.CategoryID] {
			continue
		}
		seen[p.CategoryID] = true
		out = append(out, model.Category{ID: p.CategoryID, Name: p.CategoryID})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) productReviews(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Review{}
	for _, r := range s.reviews {
		if r.ProductID == id {
			out = append(out, r)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createReview(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)

	var req struct {
		ProductID string `json:"product"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, errorJSON("rating must be 1-5"))
	}

	r := model.Review{
		ID:        uuid.NewString(),
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.reviews = append(s.reviews, r)
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, r)
}
