package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/erp/storefront/internal/application/session"
	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/metrics"
	"github.com/erp/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, access, refresh string) (*session.Resolution, error) {
	args := m.Called(ctx, access, refresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Resolution), args.Error(1)
}

func (m *MockAuthenticator) CurrentUser(ctx context.Context, token string) (*account.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

type guardFixture struct {
	auth    *MockAuthenticator
	metrics *metrics.Metrics
	router  *gin.Engine
}

func newGuardFixture() *guardFixture {
	f := &guardFixture{auth: new(MockAuthenticator), metrics: metrics.New()}
	guard := NewRoleGuard(
		f.auth,
		NewCookies(testSessionConfig()),
		NewLocaleResolver([]string{"en", "es"}, "en"),
		GuardConfig{AllowedRoles: account.NewRoleSet("admin", "manager")},
		f.metrics,
	)

	handler := func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{
			"user":     u.ID,
			"token":    backend.TokenFromContext(c.Request.Context()),
			"ctx_user": c.GetString(UserIDKey),
		})
	}

	f.router = gin.New()
	f.router.Use(RequestID())
	f.router.GET("/:locale/admin/*rest", guard.Handler(), handler)
	f.router.GET("/api/v1/backoffice/orders", guard.Handler(), handler)
	return f
}

func (f *guardFixture) do(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *guardFixture) decisions(outcome string) float64 {
	families, err := f.metrics.Registry.Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if mf.GetName() != "storefront_guard_decisions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func adminUser() *account.User {
	return &account.User{ID: "u-1", Username: "alice", Roles: []string{"Admin"}}
}

func TestRoleGuard_AllowsAdmin(t *testing.T) {
	f := newGuardFixture()
	f.auth.On("Authenticate", mock.Anything, "acc", "").
		Return(&session.Resolution{User: adminUser(), AccessToken: "acc"}, nil)

	w := f.do("/en/admin/orders", &http.Cookie{Name: "backoffice_token", Value: "acc"})

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u-1", body["user"])
	assert.Equal(t, "acc", body["token"])
	assert.Equal(t, "u-1", body["ctx_user"])
	assert.Equal(t, float64(1), f.decisions(OutcomeAllowed))
}

func TestRoleGuard_RewritesCookiesAfterRefresh(t *testing.T) {
	f := newGuardFixture()
	pair := &account.TokenPair{
		AccessToken:           "new-acc",
		RefreshToken:          "new-ref",
		AccessTokenExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshTokenExpiresAt: time.Now().Add(24 * time.Hour),
	}
	f.auth.On("Authenticate", mock.Anything, "old-acc", "old-ref").
		Return(&session.Resolution{User: adminUser(), AccessToken: "new-acc", Refreshed: pair}, nil)

	w := f.do("/api/v1/backoffice/orders",
		&http.Cookie{Name: "backoffice_token", Value: "old-acc"},
		&http.Cookie{Name: "backoffice_refresh", Value: "old-ref"},
	)

	require.Equal(t, http.StatusOK, w.Code)
	got := responseCookies(w)
	assert.Equal(t, "new-acc", got["backoffice_token"].Value)
	assert.Equal(t, "new-ref", got["backoffice_refresh"].Value)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "new-acc", body["token"])
}

func TestRoleGuard_Unauthenticated(t *testing.T) {
	t.Run("browser is redirected to localized login", func(t *testing.T) {
		f := newGuardFixture()
		f.auth.On("Authenticate", mock.Anything, "", "").Return(nil, session.ErrUnauthenticated)

		w := f.do("/es/admin/orders?page=2")

		assert.Equal(t, http.StatusFound, w.Code)
		loc, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/es/login", loc.Path)
		assert.Equal(t, "/es/admin/orders?page=2", loc.Query().Get("redirect"))
		assert.Equal(t, float64(1), f.decisions(OutcomeUnauthenticated))
	})

	t.Run("api caller gets 401 envelope", func(t *testing.T) {
		f := newGuardFixture()
		f.auth.On("Authenticate", mock.Anything, "stale", "").Return(nil, session.ErrUnauthenticated)

		w := f.do("/api/v1/backoffice/orders", &http.Cookie{Name: "backoffice_token", Value: "stale"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)

		// stale cookies are cleared
		assert.Equal(t, -1, responseCookies(w)["backoffice_token"].MaxAge)
	})
}

func TestRoleGuard_Forbidden(t *testing.T) {
	customer := &account.User{ID: "u-2", Roles: []string{"customer"}}

	t.Run("browser is redirected to forbidden page", func(t *testing.T) {
		f := newGuardFixture()
		f.auth.On("Authenticate", mock.Anything, "acc", "").
			Return(&session.Resolution{User: customer, AccessToken: "acc"}, nil)

		w := f.do("/en/admin/orders", &http.Cookie{Name: "backoffice_token", Value: "acc"})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/en/forbidden", w.Header().Get("Location"))
		assert.Equal(t, float64(1), f.decisions(OutcomeForbidden))
	})

	t.Run("api caller gets 403 envelope", func(t *testing.T) {
		f := newGuardFixture()
		f.auth.On("Authenticate", mock.Anything, "acc", "").
			Return(&session.Resolution{User: customer, AccessToken: "acc"}, nil)

		w := f.do("/api/v1/backoffice/orders", &http.Cookie{Name: "backoffice_token", Value: "acc"})

		assert.Equal(t, http.StatusForbidden, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
	})
}

func TestRoleGuard_BackendFailure(t *testing.T) {
	f := newGuardFixture()
	f.auth.On("Authenticate", mock.Anything, "acc", "").
		Return(nil, errors.Join(backend.ErrUnavailable, errors.New("dial tcp: refused")))

	w := f.do("/api/v1/backoffice/orders", &http.Cookie{Name: "backoffice_token", Value: "acc"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeBackendUnavailable, resp.Error.Code)

	w = f.do("/en/admin/orders", &http.Cookie{Name: "backoffice_token", Value: "acc"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, float64(2), f.decisions(OutcomeError))
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		path   string
		accept string
		want   bool
	}{
		{"/api/v1/cart", "", true},
		{"/en/admin", "text/html,application/xhtml+xml", false},
		{"/en/admin", "application/json", true},
		{"/en/admin", "text/html, application/json", false},
	}
	for _, tt := range tests {
		c, _ := newTestContext(httptest.NewRequest(http.MethodGet, tt.path, nil))
		c.Request.Header.Set("Accept", tt.accept)
		assert.Equal(t, tt.want, WantsJSON(c), "%s %s", tt.path, tt.accept)
	}
}

func TestRoleGuard_RefreshOutageKeepsCookies(t *testing.T) {
	f := newGuardFixture()
	outage := &backend.APIError{Status: http.StatusServiceUnavailable, Code: "SERVICE_UNAVAILABLE", Message: "down"}
	f.auth.On("Authenticate", mock.Anything, "expired", "ref").Return(nil, outage)

	w := f.do("/api/v1/backoffice/orders",
		&http.Cookie{Name: "backoffice_token", Value: "expired"},
		&http.Cookie{Name: "backoffice_refresh", Value: "ref"},
	)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeBackendUnavailable, resp.Error.Code)

	got := responseCookies(w)
	assert.NotContains(t, got, "backoffice_token")
	assert.NotContains(t, got, "backoffice_refresh")
	assert.Equal(t, float64(1), f.decisions(OutcomeError))
}
