package mockapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront/internal/domain/model"
)

type cartResponse struct {
	Items []model.CartLine `json:"items"`
	Total float64          `json:"total"`
}

type addCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type syncCartRequest struct {
	Items []model.CartLine `json:"items"`
}

func (s *Server) cartJSON(c echo.Context, userID string) error {
	lines := s.carts[userID]
	var total float64
	for _, l := range lines {
		total += l.UnitPrice() * float64(l.Quantity)
	}
	if lines == nil {
		lines = []model.CartLine{}
	}
	return c.JSON(http.StatusOK, cartResponse{Items: lines, Total: total})
}

func (s *Server) findProduct(id string) (model.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (s *Server) getCart(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartJSON(c, userID)
}

// カート追加（同一商品は数量加算、在庫上限あり）
func (s *Server) addToCart(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)

	var req addCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid quantity"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.findProduct(req.ProductID)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid product"))
	}

	lines := s.carts[userID]
	updated := false
	for i, l := range lines {
		if l.ProductID != req.ProductID {
			continue
		}
		if l.Quantity+req.Quantity > p.Stock {
			return c.JSON(http.StatusBadRequest, errorJSON("stock exceeded"))
		}
		lines[i].Quantity += req.Quantity
		updated = true
		break
	}
	if !updated {
		if req.Quantity > p.Stock {
			return c.JSON(http.StatusBadRequest, errorJSON("stock exceeded"))
		}
		lines = append(lines, model.CartLine{
			ProductID:       p.ID,
			Name:            p.Name,
			Price:           p.Price,
			DiscountedPrice: p.DiscountedPrice,
			Quantity:        req.Quantity,
			Stock:           p.Stock,
			Images:          p.Images,
		})
	}
	s.carts[userID] = lines

	return s.cartJSON(c, userID)
}

func (s *Server) updateCart(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)

	var req addCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid quantity"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i, l := range lines {
		if l.ProductID != req.ProductID {
			continue
		}
		if p, ok := s.findProduct(req.ProductID); ok && req.Quantity > p.Stock {
			return c.JSON(http.StatusBadRequest, errorJSON("stock exceeded"))
		}
		lines[i].Quantity = req.Quantity
		return s.cartJSON(c, userID)
	}
	return c.JSON(http.StatusNotFound, errorJSON("not in cart"))
}

func (s *Server) removeFromCart(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i, l := range lines {
		if l.ProductID == id {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			return s.cartJSON(c, userID)
		}
	}
	return c.JSON(http.StatusNotFound, errorJSON("not in cart"))
}

func (s *Server) clearCart(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return s.cartJSON(c, userID)
}

// オフライン作成分の一括同期。未知の商品と端末限定IDは黙って読み飛ばす。
func (s *Server) syncCart(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)

	var req syncCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for _, in := range req.Items {
		if strings.HasPrefix(in.ProductID, model.LocalIDPrefix) {
			continue
		}
		p, ok := s.findProduct(in.ProductID)
		if !ok {
			continue
		}
		qty := in.Quantity
		if qty < 1 {
			qty = 1
		}
		if qty > p.Stock {
			qty = p.Stock
		}

		// サーバー側に既にあればサーバーの数量を維持する
		exists := false
		for _, l := range lines {
			if l.ProductID == in.ProductID {
				exists = true
				break
			}
		}
		if !exists && qty > 0 {
			lines = append(lines, model.CartLine{
				ProductID:       p.ID,
				Name:            p.Name,
				Price:           p.Price,
				DiscountedPrice: p.DiscountedPrice,
				Quantity:        qty,
				Stock:           p.Stock,
				Images:          p.Images,
			})
		}
	}
	s.carts[userID] = lines

	return s.cartJSON(c, userID)
}

type wishlistResponse struct {
	Items []model.WishlistEntry `json:"items"`
}

func (s *Server) wishlistJSON(c echo.Context, userID string) error {
	entries := s.wishlists[userID]
	if entries == nil {
		entries = []model.WishlistEntry{}
	}
	return c.JSON(http.StatusOK, wishlistResponse{Items: entries})
}

func (s *Server) getWishlist(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistJSON(c, userID)
}

func (s *Server) addToWishlist(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.findProduct(req.ProductID)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid product"))
	}

	for _, e := range s.wishlists[userID] {
		if e.ProductID == req.ProductID {
			return s.wishlistJSON(c, userID)
		}
	}

	s.wishlists[userID] = append(s.wishlists[userID], model.WishlistEntry{
		ProductID:       p.ID,
		Name:            p.Name,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Stock:           p.Stock,
		Images:          p.Images,
	})
	return s.wishlistJSON(c, userID)
}

func (s *Server) removeFromWishlist(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.wishlists[userID]
	for i, e := range entries {
		if e.ProductID == id {
			s.wishlists[userID] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	return s.wishlistJSON(c, userID)
}
