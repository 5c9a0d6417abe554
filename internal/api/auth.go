package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/quillchat/quill/internal/models"
)

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type UpdateUserRequest struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// ExchangeToken trades credentials for a bearer token. This is the one
// form-encoded endpoint on the API.
func (c *Client) ExchangeToken(ctx context.Context, email, password string) (Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var token Token
	err := c.doForm(ctx, http.MethodPost, "/auth/token", form, &token)
	return token, err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (models.Identity, error) {
	var identity models.Identity
	err := c.do(ctx, http.MethodPost, "/auth/register", req, &identity)
	return identity, err
}

func (c *Client) CurrentUser(ctx context.Context) (models.Identity, error) {
	var identity models.Identity
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &identity)
	return identity, err
}

func (c *Client) UpdateCurrentUser(ctx context.Context, req UpdateUserRequest) (models.Identity, error) {
	var identity models.Identity
	err := c.do(ctx, http.MethodPatch, "/users/me", req, &identity)
	return identity, err
}
