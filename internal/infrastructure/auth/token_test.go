package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

var fixedNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func signToken(t *testing.T, secret string, expiresIn time.Duration, mutate ...func(*Claims)) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(fixedNow.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(fixedNow.Add(-time.Minute)),
		},
		UserID:    "user-1",
		Username:  "alice",
		RoleIDs:   []string{"r1"},
		TokenType: "access",
	}
	for _, m := range mutate {
		m(claims)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestInspector(secret string) *Inspector {
	i := NewInspector(secret, 30*time.Second)
	i.now = func() time.Time { return fixedNow }
	return i
}

func TestInspector_Verified(t *testing.T) {
	i := newTestInspector(testSecret)

	t.Run("valid token", func(t *testing.T) {
		info, err := i.Inspect(signToken(t, testSecret, time.Hour))
		require.NoError(t, err)
		assert.True(t, info.Verified)
		assert.Equal(t, "user-1", info.Subject())
		assert.Equal(t, "alice", info.Claims.Username)
		assert.False(t, i.NeedsRefresh(info))
	})

	t.Run("wrong signature", func(t *testing.T) {
		_, err := i.Inspect(signToken(t, "another-secret", time.Hour))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token keeps its info", func(t *testing.T) {
		info, err := i.Inspect(signToken(t, testSecret, -time.Minute))
		assert.ErrorIs(t, err, ErrExpiredToken)
		require.NotNil(t, info)
		assert.Equal(t, "user-1", info.Subject())
		assert.True(t, i.NeedsRefresh(info))
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		_, err := i.Inspect(signToken(t, testSecret, time.Hour, func(c *Claims) { c.TokenType = "refresh" }))
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("opaque token rejected when verifying", func(t *testing.T) {
		_, err := i.Inspect("opaque-session-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestInspector_Unverified(t *testing.T) {
	i := newTestInspector("")

	t.Run("reads claims of any signer", func(t *testing.T) {
		info, err := i.Inspect(signToken(t, "backend-only-secret", time.Hour))
		require.NoError(t, err)
		assert.False(t, info.Verified)
		assert.Equal(t, "user-1", info.Subject())
	})

	t.Run("expired", func(t *testing.T) {
		_, err := i.Inspect(signToken(t, "x", -time.Second))
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("opaque token passes through", func(t *testing.T) {
		info, err := i.Inspect("opaque-session-token")
		require.NoError(t, err)
		assert.True(t, info.Opaque)
		assert.Empty(t, info.Subject())
		assert.False(t, i.NeedsRefresh(info))
	})

	t.Run("garbage with dots", func(t *testing.T) {
		_, err := i.Inspect("a.b.c")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := i.Inspect("  ")
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}

func TestInspector_NeedsRefreshWithinSkew(t *testing.T) {
	i := newTestInspector(testSecret)

	info, err := i.Inspect(signToken(t, testSecret, 10*time.Second))
	require.NoError(t, err)
	assert.True(t, i.NeedsRefresh(info))
}

func TestInspector_RemainingTTL(t *testing.T) {
	i := newTestInspector("")

	assert.Equal(t, time.Minute, i.RemainingTTL(nil, time.Minute))
	assert.Equal(t, time.Minute, i.RemainingTTL(&TokenInfo{Opaque: true}, time.Minute))
	assert.Equal(t, 10*time.Second, i.RemainingTTL(&TokenInfo{ExpiresAt: fixedNow.Add(10 * time.Second)}, time.Minute))
	assert.Equal(t, time.Minute, i.RemainingTTL(&TokenInfo{ExpiresAt: fixedNow.Add(time.Hour)}, time.Minute))
	assert.Equal(t, time.Duration(0), i.RemainingTTL(&TokenInfo{ExpiresAt: fixedNow.Add(-time.Hour)}, time.Minute))
}
