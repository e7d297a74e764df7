package client

import (
	"context"
	"net/http"

	"farmmarket/internal/domain"
)

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type SignupInput struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Role        string  `json:"role,omitempty"`
	MpesaNumber *string `json:"mpesa_number,omitempty"`
	Location    *string `json:"location_string,omitempty"`
}

func (c *Client) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", in, &resp, ""); err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp.User, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	body := map[string]string{"username": username, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp, ""); err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp.User, nil
}

// Logout drops the session token. Purely client side.
func (c *Client) Logout() {
	c.setToken("")
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &u, ""); err != nil {
		return nil, err
	}
	return &u, nil
}
