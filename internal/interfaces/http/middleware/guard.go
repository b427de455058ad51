package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/erp/storefront/internal/application/session"
	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/metrics"
	"github.com/erp/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Guard outcomes recorded in metrics
const (
	OutcomeAllowed         = "allowed"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeError           = "error"
)

// Authenticator resolves the backoffice tokens of a request into a user
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken, refreshToken string) (*session.Resolution, error)
}

// GuardConfig configures the role guard
type GuardConfig struct {
	AllowedRoles  account.RoleSet
	LoginPath     string // relative to the locale, e.g. "login"
	ForbiddenPath string
	// ErrorPage renders HTML failures; nil writes a plain-text body.
	ErrorPage func(c *gin.Context, status int)
}

// RoleGuard protects backoffice routes. Browsers are redirected to the
// localized login or forbidden page; API callers get 401/403 envelopes.
type RoleGuard struct {
	auth    Authenticator
	cookies *Cookies
	locales *LocaleResolver
	cfg     GuardConfig
	metrics *metrics.Metrics
}

// NewRoleGuard creates a role guard. m may be nil.
func NewRoleGuard(auth Authenticator, cookies *Cookies, locales *LocaleResolver, cfg GuardConfig, m *metrics.Metrics) *RoleGuard {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "login"
	}
	if cfg.ForbiddenPath == "" {
		cfg.ForbiddenPath = "forbidden"
	}
	return &RoleGuard{auth: auth, cookies: cookies, locales: locales, cfg: cfg, metrics: m}
}

// Handler returns the guard middleware
func (g *RoleGuard) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		access, refresh := g.cookies.BackofficeTokens(c)
		res, err := g.auth.Authenticate(c.Request.Context(), access, refresh)
		if err != nil {
			if errors.Is(err, shared.ErrUnauthorized) {
				if access != "" || refresh != "" {
					g.cookies.ClearTokens(c, account.ScopeBackoffice)
				}
				g.unauthenticated(c)
				return
			}
			g.failed(c, err)
			return
		}

		if res.Refreshed != nil {
			g.cookies.SetTokens(c, account.ScopeBackoffice, *res.Refreshed)
		}
		if len(g.cfg.AllowedRoles) > 0 && !res.User.HasAnyRole(g.cfg.AllowedRoles) {
			g.forbidden(c, res.User)
			return
		}

		SetUser(c, res.User, res.AccessToken)
		g.metrics.GuardDecision(OutcomeAllowed)
		c.Next()
	}
}

// SetUser attaches the user and its token to the request
func SetUser(c *gin.Context, u *account.User, token string) {
	c.Set(UserKey, u)
	c.Set(UserIDKey, u.ID)
	c.Set(TokenKey, token)
	ctx := logger.WithUserID(c.Request.Context(), u.ID)
	ctx = backend.WithToken(ctx, token)
	c.Request = c.Request.WithContext(ctx)
}

// WantsJSON reports whether the caller expects an envelope instead of a page
func WantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func (g *RoleGuard) localePath(c *gin.Context, page string) string {
	return "/" + g.locales.Resolve(c) + "/" + strings.TrimPrefix(page, "/")
}

func (g *RoleGuard) unauthenticated(c *gin.Context) {
	g.metrics.GuardDecision(OutcomeUnauthenticated)
	if WantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
		return
	}
	target := g.localePath(c, g.cfg.LoginPath) + "?redirect=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

func (g *RoleGuard) forbidden(c *gin.Context, u *account.User) {
	g.metrics.GuardDecision(OutcomeForbidden)
	logger.L(c.Request.Context()).Info("Backoffice access denied",
		zap.String("user_id", u.ID),
		zap.Strings("roles", u.Roles),
		zap.String("path", c.Request.URL.Path),
	)
	if WantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeForbidden, "Access to this resource is forbidden", GetRequestID(c)))
		return
	}
	c.Redirect(http.StatusFound, g.localePath(c, g.cfg.ForbiddenPath))
	c.Abort()
}

func (g *RoleGuard) failed(c *gin.Context, err error) {
	g.metrics.GuardDecision(OutcomeError)
	logger.L(c.Request.Context()).Error("Guard could not resolve user", zap.Error(err))
	if WantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusBadGateway, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeBackendUnavailable, "Backend unavailable", GetRequestID(c)))
		return
	}
	if g.cfg.ErrorPage != nil {
		g.cfg.ErrorPage(c, http.StatusBadGateway)
		c.Abort()
		return
	}
	c.Data(http.StatusBadGateway, "text/plain; charset=utf-8", []byte("Backend unavailable"))
	c.Abort()
}
