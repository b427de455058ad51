// Package session resolves who is calling the gateway: login, token refresh,
// logout and the cached current-user lookup the role guard relies on.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/auth"
	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/cache"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var (
	ErrUnauthenticated   = shared.NewDomainError("UNAUTHORIZED", "Authentication required")
	ErrInvalidCredential = shared.NewDomainError("UNAUTHORIZED", "Invalid username or password")
	ErrInvalidScope      = shared.NewDomainError("INVALID_INPUT", "Scope must be backoffice or storefront")
)

// Backend is the subset of the backend API the session service calls
type Backend interface {
	Login(ctx context.Context, creds account.Credentials) (*account.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*account.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	Me(ctx context.Context, accessToken string) (*account.User, error)
	RegisterCustomer(ctx context.Context, reg account.Registration) (*account.User, error)
}

// Config holds session service settings
type Config struct {
	RevokeTTL    time.Duration // how long logged-out tokens with unknown expiry stay revoked
	AllowedRoles account.RoleSet
}

// Service handles session operations against the backend
type Service struct {
	backend     Backend
	inspector   *auth.Inspector
	hasher      *auth.TokenHasher
	revocations *auth.RevocationList
	meCache     *cache.ReadThrough
	config      Config
	logger      *zap.Logger
}

// NewService creates a session service. meCache may be nil to disable caching.
func NewService(
	b Backend,
	inspector *auth.Inspector,
	hasher *auth.TokenHasher,
	revocations *auth.RevocationList,
	meCache *cache.ReadThrough,
	config Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		backend:     b,
		inspector:   inspector,
		hasher:      hasher,
		revocations: revocations,
		meCache:     meCache,
		config:      config,
		logger:      logger,
	}
}

// Login authenticates against the backend. Backoffice logins require an allowed role.
func (s *Service) Login(ctx context.Context, creds account.Credentials, scope account.Scope) (*account.Session, error) {
	if !scope.Valid() {
		return nil, ErrInvalidScope
	}

	ctx, span := telemetry.StartSpan(ctx, "session.login", attribute.String("session.scope", string(scope)))
	defer span.End()

	sess, err := s.backend.Login(ctx, creds)
	if err != nil {
		if backend.IsUnauthorized(err) {
			s.logger.Info("Login rejected by backend",
				zap.String("username", creds.Username),
				zap.String("scope", string(scope)),
			)
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if scope == account.ScopeBackoffice && len(s.config.AllowedRoles) > 0 && !sess.User.HasAnyRole(s.config.AllowedRoles) {
		s.logger.Warn("Backoffice login without an allowed role",
			zap.String("user_id", sess.User.ID),
			zap.Strings("roles", sess.User.Roles),
		)
		// revoke the token just issued
		if err := s.backend.Logout(ctx, sess.Token.AccessToken); err != nil {
			logger.L(ctx).Warn("Failed to revoke token of forbidden login", zap.Error(err))
		}
		return nil, shared.ErrForbidden
	}

	s.logger.Info("User logged in",
		zap.String("user_id", sess.User.ID),
		zap.String("scope", string(scope)),
	)
	return sess, nil
}

// Refresh exchanges a refresh token for a new pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*account.TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrUnauthenticated
	}
	pair, err := s.backend.Refresh(ctx, refreshToken)
	if err != nil {
		if backend.IsUnauthorized(err) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return pair, nil
}

// Logout revokes the token at the backend and locally. Backend failures are
// logged but never keep the caller signed in.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}

	if err := s.backend.Logout(ctx, accessToken); err != nil && !backend.IsUnauthorized(err) {
		logger.L(ctx).Warn("Backend logout failed", zap.Error(err))
	}

	ttl := s.config.RevokeTTL
	if info, err := s.inspector.Inspect(accessToken); info != nil && (err == nil || errors.Is(err, auth.ErrExpiredToken)) {
		ttl = s.inspector.RemainingTTL(info, s.config.RevokeTTL)
	}
	if err := s.revocations.Revoke(ctx, accessToken, ttl); err != nil {
		logger.L(ctx).Warn("Failed to record token revocation", zap.Error(err))
	}
	if err := s.meCache.Invalidate(ctx, s.hasher.Hash(accessToken)); err != nil {
		logger.L(ctx).Warn("Failed to drop cached user", zap.Error(err))
	}
	return nil
}

// CurrentUser returns the user owning accessToken, cached by token hash
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*account.User, error) {
	if accessToken == "" {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.revocations.IsRevoked(ctx, accessToken)
	if err != nil {
		logger.L(ctx).Warn("Revocation lookup failed", zap.Error(err))
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	user, err := cache.Load(ctx, s.meCache, s.hasher.Hash(accessToken), func(ctx context.Context) (*account.User, error) {
		return s.backend.Me(ctx, accessToken)
	})
	if err != nil {
		if backend.IsUnauthorized(err) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// Register creates a storefront customer
func (s *Service) Register(ctx context.Context, reg account.Registration) (*account.User, error) {
	user, err := s.backend.RegisterCustomer(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Customer registered", zap.String("user_id", user.ID))
	return user, nil
}

// Resolution is the outcome of authenticating a request's tokens
type Resolution struct {
	User        *account.User
	AccessToken string
	// Refreshed is set when the access token was renewed and cookies must be rewritten
	Refreshed *account.TokenPair
}

// Authenticate validates the access token, refreshing it when it is expired or
// about to expire and a refresh token is available, then loads the user.
func (s *Service) Authenticate(ctx context.Context, accessToken, refreshToken string) (*Resolution, error) {
	res := &Resolution{AccessToken: accessToken}

	info, err := s.inspector.Inspect(accessToken)
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		if refreshToken == "" {
			return nil, ErrUnauthenticated
		}
	case errors.Is(err, auth.ErrExpiredToken):
	case err != nil:
		return nil, ErrUnauthenticated
	}

	mustRefresh := err != nil
	if mustRefresh || (refreshToken != "" && s.inspector.NeedsRefresh(info)) {
		pair, rerr := s.Refresh(ctx, refreshToken)
		switch {
		case rerr == nil:
			res.Refreshed = pair
			res.AccessToken = pair.AccessToken
		case mustRefresh:
			// Refresh already maps a backend 401 to ErrUnauthenticated; anything
			// else is an outage and must not end the session
			return nil, rerr
		default:
			// token is still valid; try again on the next request
			logger.L(ctx).Debug("Proactive token refresh failed", zap.Error(rerr))
		}
	}

	user, err := s.CurrentUser(ctx, res.AccessToken)
	if err != nil {
		return nil, err
	}
	res.User = user
	return res, nil
}
