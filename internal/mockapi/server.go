// Package mockapi はストアフロントAPIのインメモリ実装。
// e2eテストとローカル開発で本物のAPIの代わりに立てる。
package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/domain/model"
)

type Options struct {
	JWTSecret string
	AccessTTL time.Duration
	// Cookieヘッダがこのbyte数を超えたら431を返す（0なら無効）
	MaxCookieBytes int
}

type userRecord struct {
	user         model.User
	passwordHash string
	resetToken   string
}

// Server は全状態をメモリに持つ。再起動で消える前提。
type Server struct {
	e *echo.Echo

	secret    []byte
	accessTTL time.Duration

	mu        sync.Mutex
	users     map[string]*userRecord // email -> record
	products  []model.Product
	carts     map[string][]model.CartLine      // userID -> lines
	wishlists map[string][]model.WishlistEntry // userID -> entries
	orders    []model.Order
	coupons   []model.Coupon
	reviews   []model.Review
	contacts  []model.ContactMessage
	seq       int
}

func New(opt Options) *Server {
	if opt.JWTSecret == "" {
		opt.JWTSecret = "dev_secret_change_me"
	}
	if opt.AccessTTL <= 0 {
		opt.AccessTTL = 15 * time.Minute
	}

	s := &Server{
		e:         echo.New(),
		secret:    []byte(opt.JWTSecret),
		accessTTL: opt.AccessTTL,
		users:     make(map[string]*userRecord),
		carts:     make(map[string][]model.CartLine),
		wishlists: make(map[string][]model.WishlistEntry),
	}
	s.e.HideBanner = true

	if opt.MaxCookieBytes > 0 {
		s.e.Use(cookieLimit(opt.MaxCookieBytes))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	g := s.e.Group("/api")

	g.POST("/users/register", s.register)
	g.POST("/users/login", s.login)
	g.POST("/users/logout", s.logout, s.authJWT)
	g.GET("/users/me", s.me, s.authJWT)
	g.POST("/users/forgot-password", s.forgotPassword)
	g.POST("/users/reset-password/:token", s.resetPassword)

	g.GET("/products", s.listProducts)
	g.GET("/products/:id", s.getProduct)
	g.POST("/products", s.createProduct, s.authJWT, s.adminGuard)
	g.DELETE("/products/:id", s.deleteProduct, s.authJWT, s.adminGuard)
	g.GET("/categories", s.listCategories)

	g.GET("/reviews/product/:id", s.productReviews)
	g.POST("/reviews", s.createReview, s.authJWT)

	cart := g.Group("/cart", s.authJWT)
	cart.GET("", s.getCart)
	cart.POST("/add", s.addToCart)
	cart.PUT("/update", s.updateCart)
	cart.DELETE("/remove/:id", s.removeFromCart)
	cart.DELETE("/clear", s.clearCart)
	cart.POST("/sync", s.syncCart)

	wl := g.Group("/wishlist", s.authJWT)
	wl.GET("", s.getWishlist)
	wl.POST("", s.addToWishlist)
	wl.DELETE("/:id", s.removeFromWishlist)

	g.POST("/orders", s.createOrder, s.authJWT)
	g.GET("/orders/me", s.myOrders, s.authJWT)
	g.GET("/orders/:id", s.getOrder, s.authJWT)
	g.PUT("/orders/:id/status", s.updateOrderStatus, s.authJWT, s.adminGuard)

	g.GET("/coupons", s.listCoupons, s.authJWT, s.adminGuard)
	g.POST("/coupons/apply", s.applyCoupon)

	g.POST("/contact", s.contact)
	g.POST("/custom-orders", s.customOrder)

	admin := g.Group("/admin", s.authJWT, s.adminGuard)
	admin.GET("/counts", s.adminCounts)
	admin.GET("/users", s.adminUsers)
	admin.GET("/orders", s.adminOrders)
	admin.GET("/messages", s.adminMessages)
}

// Handler はhttptest.NewServerへ渡すためのhttp.Handler。
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start は実サーバーとして起動する（cmd/mockapi用）。
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// Cookieヘッダが大きすぎるリクエストを431で拒否する。
// クライアント側の退避・リトライ動作の検証に使う。
func cookieLimit(maxBytes int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(c.Request().Header.Get("Cookie")) > maxBytes {
				return c.JSON(http.StatusRequestHeaderFieldsTooLarge,
					errorJSON("request header fields too large"))
			}
			return next(c)
		}
	}
}
