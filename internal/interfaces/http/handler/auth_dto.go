package handler

import (
	"time"

	"github.com/erp/storefront/internal/domain/account"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string        `json:"username" binding:"required,min=3,max=100"`
	Password string        `json:"password" binding:"required,min=8,max=128"`
	Scope    account.Scope `json:"scope" binding:"required,oneof=backoffice storefront"`
}

// ScopeRequest selects the cookie family for refresh and logout
type ScopeRequest struct {
	Scope account.Scope `json:"scope" form:"scope" binding:"omitempty,oneof=backoffice storefront"`
}

// SessionResponse is returned after login and refresh. Tokens stay in cookies.
type SessionResponse struct {
	User      *account.User `json:"user,omitempty"`
	Scope     account.Scope `json:"scope"`
	ExpiresAt time.Time     `json:"expires_at"`
}
