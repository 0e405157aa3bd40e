package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain/model"
)

const (
	ctxUserIDKey = "user_id" // string
	ctxRoleKey   = "user_role"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// SeedUser はテスト用にユーザーを直接登録する。
func (s *Server) SeedUser(name, email, password string, role model.Role) model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	s.users[email] = &userRecord{user: u, passwordHash: string(hash)}
	return u
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}
	if req.Email == "" || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid email or password"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[req.Email]; ok {
		return c.JSON(http.StatusConflict, errorJSON("email already exists"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	u := model.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Role:      model.RoleUser,
		CreatedAt: time.Now(),
	}
	s.users[req.Email] = &userRecord{user: u, passwordHash: string(hash)}

	return c.JSON(http.StatusCreated, map[string]model.User{"user": u})
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	s.mu.Lock()
	rec, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("invalid credentials"))
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.passwordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, errorJSON("invalid credentials"))
	}

	token, err := s.issueToken(rec.user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
	}

	// ブラウザ向けにセッションCookieも設定する
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	return c.JSON(http.StatusOK, loginResponse{User: rec.user, Token: token})
}

func (s *Server) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:   "token",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) me(c echo.Context) error {
	userID, _ := c.Get(ctxUserIDKey).(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if rec.user.ID == userID {
			return c.JSON(http.StatusOK, rec.user)
		}
	}
	return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
}

func (s *Server) forgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[req.Email]
	if !ok {
		// 存在有無は漏らさない
		return c.JSON(http.StatusOK, map[string]string{"message": "reset mail sent"})
	}
	rec.resetToken = uuid.NewString()
	return c.JSON(http.StatusOK, map[string]string{"message": "reset mail sent"})
}

func (s *Server) resetPassword(c echo.Context) error {
	token := c.Param("token")
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid password"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if rec.resetToken != "" && rec.resetToken == token {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}
			rec.passwordHash = string(hash)
			rec.resetToken = ""
			return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
		}
	}
	return c.JSON(http.StatusBadRequest, errorJSON("invalid or expired token"))
}

func (s *Server) issueToken(u model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": string(u.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// bearerAuth用のJWT検証ミドルウェア。
func (s *Server) authJWT(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" {
			return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
		}

		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
		}

		token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return s.secret, nil
		})
		if err != nil || token == nil || !token.Valid {
			return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
		}

		sub, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		if sub == "" || role == "" {
			return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
		}

		c.Set(ctxUserIDKey, sub)
		c.Set(ctxRoleKey, role)
		return next(c)
	}
}

// adminだけ許可。userは403。
func (s *Server) adminGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get(ctxRoleKey).(string)
		if role == "" {
			return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
		}
		if role != string(model.RoleAdmin) {
			return c.JSON(http.StatusForbidden, errorJSON("admin only"))
		}
		return next(c)
	}
}
