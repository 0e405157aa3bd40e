package api

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/restclient"
)

// /users 配下の呼び出し。
type UsersAPI struct {
	c *restclient.Client
}

func NewUsersAPI(c *restclient.Client) *UsersAPI {
	return &UsersAPI{c: c}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

func (a *UsersAPI) Register(ctx context.Context, in RegisterRequest) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	if err := a.c.DoJSON(ctx, http.MethodPost, "/users/register", in, &out); err != nil {
		return model.User{}, err
	}
	return out.User, nil
}

func (a *UsersAPI) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := a.c.DoJSON(ctx, http.MethodPost, "/users/login", LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (a *UsersAPI) Logout(ctx context.Context) error {
	return a.c.DoJSON(ctx, http.MethodPost, "/users/logout", nil, nil)
}

// Me は現在のトークンでユーザーを再検証する
func (a *UsersAPI) Me(ctx context.Context) (model.User, error) {
	var out model.User
	err := a.c.DoJSON(ctx, http.MethodGet, "/users/me", nil, &out)
	return out, err
}

func (a *UsersAPI) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return a.c.DoJSON(ctx, http.MethodPost, "/users/forgot-password", body, nil)
}

func (a *UsersAPI) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"password": password}
	return a.c.DoJSON(ctx, http.MethodPost, "/users/reset-password/"+token, body, nil)
}
