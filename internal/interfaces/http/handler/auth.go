package handler

import (
	"context"
	"errors"

	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/domain/cart"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionService is the session API the auth handlers call
type SessionService interface {
	Login(ctx context.Context, creds account.Credentials, scope account.Scope) (*account.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*account.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*account.User, error)
}

// GuestCartMerger folds a guest cart into the signed-in user's cart
type GuestCartMerger interface {
	MergeGuest(ctx context.Context, guestCartID, userID string) (*cart.Cart, error)
}

// AuthHandler handles login, refresh, logout and the current user
type AuthHandler struct {
	BaseHandler
	sessions SessionService
	carts    GuestCartMerger
	cookies  *middleware.Cookies
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions SessionService, carts GuestCartMerger, cookies *middleware.Cookies) *AuthHandler {
	return &AuthHandler{sessions: sessions, carts: carts, cookies: cookies}
}

// Login handles POST /auth/login. Storefront logins adopt the guest cart.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	sess, err := h.sessions.Login(ctx, account.Credentials{Username: req.Username, Password: req.Password}, req.Scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.cookies.SetTokens(c, req.Scope, sess.Token)

	if req.Scope == account.ScopeStorefront {
		if guest := h.cookies.CartID(c); guest != "" {
			if _, err := h.carts.MergeGuest(ctx, guest, sess.User.ID); err != nil {
				logger.L(ctx).Warn("Guest cart merge failed",
					zap.String("cart_id", guest),
					zap.String("user_id", sess.User.ID),
					zap.Error(err),
				)
			}
		}
	}

	h.Success(c, SessionResponse{User: &sess.User, Scope: req.Scope, ExpiresAt: sess.Token.AccessTokenExpiresAt})
}

// Refresh handles POST /auth/refresh for backoffice sessions
func (h *AuthHandler) Refresh(c *gin.Context) {
	_, refresh := h.cookies.BackofficeTokens(c)
	if refresh == "" {
		h.Unauthorized(c, "No refresh token")
		return
	}
	pair, err := h.sessions.Refresh(c.Request.Context(), refresh)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			h.cookies.ClearTokens(c, account.ScopeBackoffice)
		}
		h.HandleError(c, err)
		return
	}
	h.cookies.SetTokens(c, account.ScopeBackoffice, *pair)
	h.Success(c, SessionResponse{Scope: account.ScopeBackoffice, ExpiresAt: pair.AccessTokenExpiresAt})
}

// Logout handles POST /auth/logout. Without a scope both sessions end.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req ScopeRequest
	if !h.BindQuery(c, &req) {
		return
	}
	ctx := c.Request.Context()

	scopes := []account.Scope{account.ScopeBackoffice, account.ScopeStorefront}
	if req.Scope != "" {
		scopes = []account.Scope{req.Scope}
	}
	for _, scope := range scopes {
		token := h.cookies.CustomerToken(c)
		if scope == account.ScopeBackoffice {
			token, _ = h.cookies.BackofficeTokens(c)
		}
		if token != "" {
			if err := h.sessions.Logout(ctx, token); err != nil {
				logger.L(ctx).Warn("Logout failed", zap.String("scope", string(scope)), zap.Error(err))
			}
		}
		h.cookies.ClearTokens(c, scope)
	}
	h.Success(c, gin.H{"logged_out": true})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	var req ScopeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	var token string
	switch req.Scope {
	case account.ScopeBackoffice:
		token, _ = h.cookies.BackofficeTokens(c)
	case account.ScopeStorefront:
		token = h.cookies.CustomerToken(c)
	default:
		token = h.cookies.BearerToken(c)
	}
	if token == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.sessions.CurrentUser(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
