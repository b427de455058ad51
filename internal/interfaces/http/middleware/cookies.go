package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Cookies reads and writes the gateway's session cookies. All of them are
// httpOnly; Secure and SameSite come from configuration.
type Cookies struct {
	cfg      config.SessionConfig
	sameSite http.SameSite
}

// NewCookies creates a cookie helper
func NewCookies(cfg config.SessionConfig) *Cookies {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return &Cookies{cfg: cfg, sameSite: parseSameSite(cfg.SameSite)}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (k *Cookies) set(c *gin.Context, name, value string, expires time.Time, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     k.cfg.Path,
		Domain:   k.cfg.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		Secure:   k.cfg.Secure,
		HttpOnly: true,
		SameSite: k.sameSite,
	})
}

func (k *Cookies) setUntil(c *gin.Context, name, value string, expires time.Time) {
	if expires.IsZero() {
		expires = time.Now().Add(k.cfg.MaxAge)
	}
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		maxAge = 1
	}
	k.set(c, name, value, expires, maxAge)
}

func (k *Cookies) clear(c *gin.Context, name string) {
	k.set(c, name, "", time.Unix(0, 0), -1)
}

func (k *Cookies) read(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return v
}

// BackofficeTokens returns the admin access and refresh tokens
func (k *Cookies) BackofficeTokens(c *gin.Context) (access, refresh string) {
	return k.read(c, k.cfg.AccessCookie), k.read(c, k.cfg.RefreshCookie)
}

// CustomerToken returns the storefront session token
func (k *Cookies) CustomerToken(c *gin.Context) string {
	return k.read(c, k.cfg.CustomerCookie)
}

// BearerToken returns the token the proxy forwards: backoffice first, then storefront
func (k *Cookies) BearerToken(c *gin.Context) string {
	if t := k.read(c, k.cfg.AccessCookie); t != "" {
		return t
	}
	return k.read(c, k.cfg.CustomerCookie)
}

// SetTokens stores a token pair for the given scope
func (k *Cookies) SetTokens(c *gin.Context, scope account.Scope, pair account.TokenPair) {
	if scope == account.ScopeStorefront {
		k.setUntil(c, k.cfg.CustomerCookie, pair.AccessToken, pair.AccessTokenExpiresAt)
		return
	}
	k.setUntil(c, k.cfg.AccessCookie, pair.AccessToken, pair.AccessTokenExpiresAt)
	if pair.RefreshToken != "" {
		k.setUntil(c, k.cfg.RefreshCookie, pair.RefreshToken, pair.RefreshTokenExpiresAt)
	}
}

// ClearTokens removes the session cookies of the given scope
func (k *Cookies) ClearTokens(c *gin.Context, scope account.Scope) {
	if scope == account.ScopeStorefront {
		k.clear(c, k.cfg.CustomerCookie)
		return
	}
	k.clear(c, k.cfg.AccessCookie)
	k.clear(c, k.cfg.RefreshCookie)
}

// CartID returns the guest cart id, if the visitor has one
func (k *Cookies) CartID(c *gin.Context) string {
	id := k.read(c, k.cfg.CartCookie)
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// EnsureCartID returns the guest cart id, issuing a new cookie when missing
func (k *Cookies) EnsureCartID(c *gin.Context) string {
	if id := k.CartID(c); id != "" {
		return id
	}
	id := uuid.NewString()
	k.setUntil(c, k.cfg.CartCookie, id, time.Time{})
	return id
}

// ClearCartID removes the guest cart cookie
func (k *Cookies) ClearCartID(c *gin.Context) {
	k.clear(c, k.cfg.CartCookie)
}
