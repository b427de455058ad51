package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken     = errors.New("missing token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
)

// Claims mirrors the claims the commerce backend puts in its access tokens
type Claims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	RoleIDs     []string `json:"role_ids,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	TokenType   string   `json:"token_type,omitempty"`
}

// TokenInfo is what the gateway learned from a bearer token without calling the backend
type TokenInfo struct {
	Claims    *Claims
	ExpiresAt time.Time // zero when unknown
	Verified  bool      // signature checked against the shared secret
	Opaque    bool      // not a JWT; only the backend can judge it
}

// Subject returns the user id carried by the token, if any
func (t *TokenInfo) Subject() string {
	if t == nil || t.Claims == nil {
		return ""
	}
	if t.Claims.UserID != "" {
		return t.Claims.UserID
	}
	return t.Claims.Subject
}

// Inspector reads backend-issued access tokens.
// With a secret, signatures are verified with HMAC; without one the claims are
// read unverified and the backend's /me call stays the authority.
type Inspector struct {
	secret      []byte
	refreshSkew time.Duration
	now         func() time.Time
}

// NewInspector creates an inspector. refreshSkew is how close to expiry a token
// must be before NeedsRefresh reports true.
func NewInspector(secret string, refreshSkew time.Duration) *Inspector {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &Inspector{secret: key, refreshSkew: refreshSkew, now: time.Now}
}

// Inspect parses token. Expired tokens return their info together with ErrExpiredToken
// so callers can still attempt a refresh.
func (i *Inspector) Inspect(token string) (*TokenInfo, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	if strings.Count(token, ".") != 2 {
		if i.secret != nil {
			return nil, ErrInvalidToken
		}
		return &TokenInfo{Opaque: true}, nil
	}

	claims := &Claims{}
	info := &TokenInfo{Claims: claims}

	if i.secret == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, ErrInvalidToken
		}
	} else {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithTimeFunc(i.now),
		)
		_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return i.secret, nil
		})
		switch {
		case err == nil:
		case errors.Is(err, jwt.ErrTokenExpired):
			// signature was valid; only the expiry failed
		default:
			return nil, ErrInvalidToken
		}
		info.Verified = true
	}

	if claims.TokenType != "" && claims.TokenType != "access" {
		return nil, ErrInvalidTokenType
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		if !i.now().Before(info.ExpiresAt) {
			return info, ErrExpiredToken
		}
	}
	return info, nil
}

// NeedsRefresh reports whether the token expires within the refresh skew
func (i *Inspector) NeedsRefresh(info *TokenInfo) bool {
	if info == nil || info.ExpiresAt.IsZero() {
		return false
	}
	return !i.now().Add(i.refreshSkew).Before(info.ExpiresAt)
}

// RemainingTTL returns how long the token stays valid, capped at max.
// Unknown expiry yields max.
func (i *Inspector) RemainingTTL(info *TokenInfo, max time.Duration) time.Duration {
	if info == nil || info.ExpiresAt.IsZero() {
		return max
	}
	remaining := info.ExpiresAt.Sub(i.now())
	if remaining < 0 {
		return 0
	}
	if remaining > max {
		return max
	}
	return remaining
}
