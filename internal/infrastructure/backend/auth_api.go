package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/domain/shared"
)

// Login exchanges credentials for a token pair and user.
func (c *Client) Login(ctx context.Context, creds account.Credentials) (*account.Session, error) {
	var session account.Session
	err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/api/auth/login",
		Body:      creds,
		Anonymous: true,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*account.TokenPair, error) {
	var resp struct {
		Token account.TokenPair `json:"token"`
	}
	err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/api/auth/refresh",
		Body:      map[string]string{"refresh_token": refreshToken},
		Anonymous: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token.AccessToken == "" {
		return nil, fmt.Errorf("refresh response carried no access token")
	}
	return &resp.Token, nil
}

// Logout revokes the access token.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/logout",
		Token:  accessToken,
	}, nil)
}

// Me returns the user owning accessToken. The backend answers either
// {user:{...},permissions:[...]} or the bare user object.
func (c *Client) Me(ctx context.Context, accessToken string) (*account.User, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/auth/me", Token: accessToken}, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		User        *account.User `json:"user"`
		Permissions []string      `json:"permissions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding current user: %w", err)
	}
	if wrapped.User != nil {
		if len(wrapped.User.Permissions) == 0 {
			wrapped.User.Permissions = wrapped.Permissions
		}
		return wrapped.User, nil
	}

	var user account.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decoding current user: %w", err)
	}
	return &user, nil
}

// RegisterCustomer creates a storefront customer account.
func (c *Client) RegisterCustomer(ctx context.Context, reg account.Registration) (*account.User, error) {
	var user account.User
	err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/api/customers/register",
		Body:      reg,
		Anonymous: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CustomerOrders lists the signed-in customer's orders.
func (c *Client) CustomerOrders(ctx context.Context, params shared.ListParams) (shared.Page[order.Order], error) {
	return GetPage[order.Order](ctx, c, "/api/customers/me/orders", params.Query())
}
