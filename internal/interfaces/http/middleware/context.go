package middleware

import (
	"github.com/erp/storefront/internal/domain/account"
	"github.com/gin-gonic/gin"
)

// Gin context keys set by the gateway middleware
const (
	RequestIDKey = "request_id"
	UserKey      = "user"
	UserIDKey    = "user_id"
	LocaleKey    = "locale"
	TokenKey     = "access_token"
)

// RequestIDHeader carries the correlation id in and out of the gateway
const RequestIDHeader = "X-Request-ID"

// GetRequestID returns the request id assigned by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// CurrentUser returns the authenticated user, if any
func CurrentUser(c *gin.Context) (*account.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*account.User)
	return u, ok && u != nil
}

// AccessToken returns the bearer token resolved for this request
func AccessToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}

// Locale returns the locale chosen by the Locale middleware
func Locale(c *gin.Context) string {
	return c.GetString(LocaleKey)
}
