package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/erp/storefront/internal/infrastructure/config"
	"github.com/erp/storefront/internal/infrastructure/metrics"
	"github.com/erp/storefront/internal/interfaces/http/dto"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testCookies() *middleware.Cookies {
	return middleware.NewCookies(config.SessionConfig{
		AccessCookie:   "backoffice_token",
		RefreshCookie:  "backoffice_refresh",
		CustomerCookie: "session_token",
		CartCookie:     "cart_id",
		MaxAge:         time.Hour,
	})
}

func proxyCount(t *testing.T, m *metrics.Metrics, method, status string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "storefront_proxy_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["method"] == method && labels["status"] == status {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

type captured struct {
	path, query, auth, cookie, requestID, forwardedFor, forwardedHost string
}

func newBackend(t *testing.T, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")
		got.cookie = r.Header.Get("Cookie")
		got.requestID = r.Header.Get("X-Request-ID")
		got.forwardedFor = r.Header.Get("X-Forwarded-For")
		got.forwardedHost = r.Header.Get("X-Forwarded-Host")
		http.SetCookie(w, &http.Cookie{Name: "backend_session", Value: "leak"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":{"ok":true}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newGateway serves the proxy through a real listener. ReverseProxy needs a
// request context that can be cancelled, which a recorder does not give it.
func newGateway(t *testing.T, target string, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	u, err := url.Parse(target)
	require.NoError(t, err)
	p, err := New(Config{Target: u, Exclude: []string{"/api/v1/"}}, testCookies(), m)
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/api/v1/cart", func(c *gin.Context) { c.String(http.StatusOK, "bff") })
	router.NoRoute(func(c *gin.Context) {
		if p.Matches(c.Request.URL.Path) {
			p.Handler()(c)
			return
		}
		c.Status(http.StatusNotFound)
	})

	gw := httptest.NewServer(router)
	t.Cleanup(gw.Close)
	return gw
}

func do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func newRequest(t *testing.T, gw *httptest.Server, method, path string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, gw.URL+path, body)
	require.NoError(t, err)
	return req
}

func TestProxy_ForwardsWithBearer(t *testing.T) {
	var got captured
	srv := newBackend(t, &got)
	m := metrics.New()
	gw := newGateway(t, srv.URL+"/base", m)

	req := newRequest(t, gw, http.MethodGet, "/api/products?page=2&limit=10", nil)
	req.Header.Set("Authorization", "Bearer forged")
	req.Header.Set("X-Request-ID", "req-42")
	req.AddCookie(&http.Cookie{Name: "backoffice_token", Value: "admin-token"})
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "customer-token"})
	resp, body := do(t, req)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"data":{"ok":true}}`, body)

	assert.Equal(t, "/base/api/products", got.path)
	assert.Equal(t, "page=2&limit=10", got.query)
	assert.Equal(t, "Bearer admin-token", got.auth)
	assert.Empty(t, got.cookie)
	assert.Equal(t, "req-42", got.requestID)
	assert.Equal(t, "127.0.0.1", got.forwardedFor)
	assert.Equal(t, strings.TrimPrefix(gw.URL, "http://"), got.forwardedHost)

	assert.Empty(t, resp.Header.Values("Set-Cookie"))
	assert.Equal(t, float64(1), proxyCount(t, m, "GET", "200"))
}

func TestProxy_FallsBackToCustomerToken(t *testing.T) {
	var got captured
	srv := newBackend(t, &got)
	gw := newGateway(t, srv.URL, nil)

	req := newRequest(t, gw, http.MethodGet, "/api/customers/me/orders", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "customer-token"})
	do(t, req)

	assert.Equal(t, "Bearer customer-token", got.auth)
}

func TestProxy_AnonymousSendsNoAuthorization(t *testing.T) {
	var got captured
	srv := newBackend(t, &got)
	gw := newGateway(t, srv.URL, nil)

	req := newRequest(t, gw, http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer forged")
	resp, _ := do(t, req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/api/products", got.path)
	assert.Empty(t, got.auth)
}

func TestProxy_DoesNotShadowGatewayRoutes(t *testing.T) {
	var got captured
	srv := newBackend(t, &got)
	gw := newGateway(t, srv.URL, nil)

	_, body := do(t, newRequest(t, gw, http.MethodGet, "/api/v1/cart", nil))
	assert.Equal(t, "bff", body)

	resp, _ := do(t, newRequest(t, gw, http.MethodGet, "/api/v1/unknown", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, got.path)
}

func TestProxy_BackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	m := metrics.New()
	gw := newGateway(t, target, m)

	resp, body := do(t, newRequest(t, gw, http.MethodPost, "/api/orders", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var env dto.Response
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	assert.Equal(t, dto.ErrCodeBackendUnavailable, env.Error.Code)
	assert.Equal(t, resp.Header.Get("X-Request-ID"), env.Error.RequestID)
	assert.Equal(t, float64(1), proxyCount(t, m, "POST", "error"))
}

func TestNew_RejectsRelativeTarget(t *testing.T) {
	_, err := New(Config{Target: &url.URL{Path: "/api"}}, testCookies(), nil)
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	p := &Proxy{prefix: "/api/", exclude: []string{"/api/v1/"}}
	assert.True(t, p.Matches("/api/products"))
	assert.False(t, p.Matches("/api/v1/cart"))
	assert.False(t, p.Matches("/en/products"))
	assert.False(t, p.Matches("/api"))
}
