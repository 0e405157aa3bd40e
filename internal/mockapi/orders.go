package mockapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storefront/internal/domain/model"
)

type createOrderRequest struct {
	Items      []model.OrderItem `json:"items"`
	Address    string            `json:"address"`
	CouponCode string            `json:"couponCode"`
}

func (s *Server) createOrder(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, errorJSON("order is empty"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid quantity"))
		}
		p, ok := s.findProduct(it.ProductID)
		if !ok {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid product"))
		}
		if it.Quantity > p.Stock {
			return c.JSON(http.StatusBadRequest, errorJSON("stock exceeded"))
		}
		total += it.Price * float64(it.Quantity)
	}

	if req.CouponCode != "" {
		coupon, ok := s.findCoupon(req.CouponCode)
		if !ok || !coupon.Usable(time.Now()) {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid coupon"))
		}
		total = total * (100 - coupon.Discount) / 100
	}

	// 在庫を引き落とす
	for _, it := range req.Items {
		for i := range s.products {
			if s.products[i].ID == it.ProductID {
				s.products[i].Stock -= it.Quantity
			}
		}
	}

	order := model.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     req.Items,
		Total:     total,
		Status:    model.OrderStatusPending,
		Address:   req.Address,
		CreatedAt: time.Now(),
	}
	s.orders = append(s.orders, order)

	// 注文が立ったらサーバー側カートは空にする
	delete(s.carts, userID)

	return c.JSON(http.StatusCreated, order)
}

func (s *Server) myOrders(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getOrder(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)
	role, _ := c.Get(ctxRoleKey).(string)
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID != id {
			continue
		}
		// 他人の注文は管理者だけが見られる
		if o.UserID != userID && role != string(model.RoleAdmin) {
			return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
		}
		return c.JSON(http.StatusOK, o)
	}
	return c.JSON(http.StatusNotFound, errorJSON("order not found"))
}

func (s *Server) updateOrderStatus(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	switch req.Status {
	case model.OrderStatusPending, model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCancelled:
	default:
		return c.JSON(http.StatusBadRequest, errorJSON("invalid status"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = req.Status
			return c.JSON(http.StatusOK, s.orders[i])
		}
	}
	return c.JSON(http.StatusNotFound, errorJSON("order not found"))
}

func (s *Server) findCoupon(code string) (model.Coupon, bool) {
	for _, cp := range s.coupons {
		if cp.Code == code {
			return cp, true
		}
	}
	return model.Coupon{}, false
}

func (s *Server) listCoupons(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Coupon, len(s.coupons))
	copy(out, s.coupons)
	return c.JSON(http.StatusOK, out)
}

type applyCouponRequest struct {
	Code  string  `json:"code"`
	Total float64 `json:"total"`
}

type applyCouponResponse struct {
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

func (s *Server) applyCoupon(c echo.Context) error {
	var req applyCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coupon, ok := s.findCoupon(req.Code)
	if !ok || !coupon.Usable(time.Now()) {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid coupon"))
	}

	return c.JSON(http.StatusOK, applyCouponResponse{
		Discount: coupon.Discount,
		Total:    req.Total * (100 - coupon.Discount) / 100,
	})
}

func (s *Server) contact(c echo.Context) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	if req.Email == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, errorJSON("email and message are required"))
	}

	s.mu.Lock()
	s.contacts = append(s.contacts, model.ContactMessage{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		CreatedAt: time.Now(),
	})
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, map[string]string{"message": "received"})
}

func (s *Server) customOrder(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	if req.Email == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, errorJSON("email and description are required"))
	}

	s.mu.Lock()
	s.contacts = append(s.contacts, model.ContactMessage{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Message:   "custom order: " + req.Description,
		CreatedAt: time.Now(),
	})
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, map[string]string{"message": "received"})
}

type adminCounts struct {
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
	Users    int64 `json:"users"`
	Messages int64 `json:"messages"`
}

func (s *Server) adminCounts(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, adminCounts{
		Products: int64(len(s.products)),
		Orders:   int64(len(s.orders)),
		Users:    int64(len(s.users)),
		Messages: int64(len(s.contacts)),
	})
}

func (s *Server) adminUsers(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.User{}
	for _, rec := range s.users {
		out = append(out, rec.user)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) adminOrders(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) adminMessages(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ContactMessage, len(s.contacts))
	copy(out, s.contacts)
	return c.JSON(http.StatusOK, out)
}
