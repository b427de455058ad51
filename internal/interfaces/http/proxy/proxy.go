// Package proxy forwards /api/* requests that the gateway does not serve
// itself to the backend, swapping browser cookies for a bearer token.
package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/metrics"
	"github.com/erp/storefront/internal/interfaces/http/dto"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Config configures the proxy
type Config struct {
	Target *url.URL
	// Prefix is the path the proxy serves, "/api/" by default.
	Prefix string
	// Exclude lists prefixes answered by the gateway itself, e.g. "/api/v1/".
	Exclude []string
	// Transport overrides the base transport; it is still wrapped with otelhttp.
	Transport http.RoundTripper
	// ResponseHeaderTimeout bounds the wait for the backend's headers.
	ResponseHeaderTimeout time.Duration
}

// Proxy is the generic backend proxy
type Proxy struct {
	rp      *httputil.ReverseProxy
	cookies *middleware.Cookies
	metrics *metrics.Metrics
	prefix  string
	exclude []string
}

// New creates a proxy. m may be nil.
func New(cfg Config, cookies *middleware.Cookies, m *metrics.Metrics) (*Proxy, error) {
	if cfg.Target == nil || cfg.Target.Scheme == "" || cfg.Target.Host == "" {
		return nil, errors.New("proxy target must be an absolute URL")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "/api/"
	}

	transport := cfg.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.ResponseHeaderTimeout > 0 {
			t.ResponseHeaderTimeout = cfg.ResponseHeaderTimeout
		}
		transport = t
	}

	p := &Proxy{cookies: cookies, metrics: m, prefix: cfg.Prefix, exclude: cfg.Exclude}
	target := cfg.Target
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()

			r.Out.Header.Del("Cookie")
			r.Out.Header.Del("Authorization")
			if token := backend.TokenFromContext(r.In.Context()); token != "" {
				r.Out.Header.Set("Authorization", "Bearer "+token)
			}
			if id := logger.GetRequestID(r.In.Context()); id != "" {
				r.Out.Header.Set(middleware.RequestIDHeader, id)
			}
		},
		Transport:      otelhttp.NewTransport(transport),
		ModifyResponse: p.modifyResponse,
		ErrorHandler:   p.handleError,
	}
	return p, nil
}

// Matches reports whether path belongs to the proxy
func (p *Proxy) Matches(path string) bool {
	if !strings.HasPrefix(path, p.prefix) {
		return false
	}
	for _, ex := range p.exclude {
		if strings.HasPrefix(path, ex) {
			return false
		}
	}
	return true
}

// Handler serves a request through the proxy
func (p *Proxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := backend.WithToken(c.Request.Context(), p.cookies.BearerToken(c))
		ctx = logger.WithRequestID(ctx, middleware.GetRequestID(c))
		p.rp.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
	}
}

// the backend never sets browser cookies through the gateway
func (p *Proxy) modifyResponse(resp *http.Response) error {
	resp.Header.Del("Set-Cookie")
	p.metrics.ObserveProxy(resp.Request.Method, resp.StatusCode)
	return nil
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	p.metrics.ObserveProxy(r.Method, 0)
	logger.L(ctx).Warn("Proxy request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBackendUnavailable,
		"Backend unavailable",
		logger.GetRequestID(ctx),
	))
}
