package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserResolver loads the user owning a token
type UserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*account.User, error)
}

// CustomerSession attaches the storefront customer when the session cookie
// resolves to a user. Anonymous visitors pass through; a stale cookie is cleared.
func CustomerSession(users UserResolver, cookies *Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookies.CustomerToken(c)
		if token == "" {
			c.Next()
			return
		}
		u, err := users.CurrentUser(c.Request.Context(), token)
		switch {
		case err == nil:
			SetUser(c, u, token)
		case errors.Is(err, shared.ErrUnauthorized):
			cookies.ClearTokens(c, account.ScopeStorefront)
		default:
			logger.L(c.Request.Context()).Warn("Customer session lookup failed", zap.Error(err))
		}
		c.Next()
	}
}

// RequireUser rejects requests that CustomerSession or the guard left anonymous
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Sign in required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
