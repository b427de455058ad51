package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/storefront/internal/domain/account"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/backend"
	"github.com/erp/storefront/internal/infrastructure/config"
	"github.com/erp/storefront/internal/interfaces/http/dto"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
)

const testRequestID = "req-test-1"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func testCookies() *middleware.Cookies {
	return middleware.NewCookies(config.SessionConfig{
		AccessCookie:   "backoffice_token",
		RefreshCookie:  "backoffice_refresh",
		CustomerCookie: "session_token",
		CartCookie:     "cart_id",
		Path:           "/",
		SameSite:       "lax",
		MaxAge:         24 * time.Hour,
	})
}

func responseCookies(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range (&http.Response{Header: w.Header()}).Cookies() {
		out[c.Name] = c
	}
	return out
}

// newTestRouter returns an engine that tags every request with a fixed
// request id and runs pre before the handlers.
func newTestRouter(pre ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.RequestIDKey, testRequestID)
		c.Next()
	})
	r.Use(pre...)
	return r
}

// signedIn attaches u to the request as the guard or customer middleware would
func signedIn(u *account.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetUser(c, u, "user-token")
		c.Next()
	}
}

func jsonRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter()
	r.GET("/ok", func(c *gin.Context) { h.Success(c, gin.H{"a": 1}) })
	r.GET("/created", func(c *gin.Context) { h.Created(c, gin.H{"id": "x"}) })
	r.GET("/page", func(c *gin.Context) {
		Page(c, shared.NewPage([]string{"a", "b"}, 12, 2, 2))
	})
	r.GET("/empty", func(c *gin.Context) { Page(c, shared.Page[string]{}) })

	t.Run("success", func(t *testing.T) {
		w := perform(r, jsonRequest(http.MethodGet, "/ok", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"a":1}}`, w.Body.String())
	})

	t.Run("created", func(t *testing.T) {
		w := perform(r, jsonRequest(http.MethodGet, "/created", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("page carries meta", func(t *testing.T) {
		w := perform(r, jsonRequest(http.MethodGet, "/page", nil))
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(12), env.Meta.Total)
		assert.Equal(t, 2, env.Meta.Page)
		assert.Equal(t, 6, env.Meta.TotalPages)
		assert.JSONEq(t, `["a","b"]`, string(env.Data))
	})

	t.Run("empty page renders an empty list", func(t *testing.T) {
		w := perform(r, jsonRequest(http.MethodGet, "/empty", nil))
		env := decodeEnvelope(t, w)
		assert.JSONEq(t, `[]`, string(env.Data))
	})
}

type bindTarget struct {
	Name     string `json:"name" binding:"required,max=5"`
	Quantity int    `json:"quantity" binding:"min=1"`
}

func TestBaseHandler_BindJSON(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter()
	r.POST("/bind", func(c *gin.Context) {
		var v bindTarget
		if !h.BindJSON(c, &v) {
			return
		}
		h.Success(c, v)
	})

	tests := []struct {
		name     string
		body     string
		status   int
		code     string
		hasField string
	}{
		{name: "valid", body: `{"name":"abc","quantity":2}`, status: http.StatusOK},
		{name: "validation failure", body: `{"quantity":0}`, status: http.StatusBadRequest, code: dto.ErrCodeValidation, hasField: "name"},
		{name: "malformed json", body: `{"name":`, status: http.StatusBadRequest, code: dto.ErrCodeInvalidJSON},
		{name: "wrong type", body: `{"name":"a","quantity":"two"}`, status: http.StatusBadRequest, code: dto.ErrCodeInvalidJSON},
		{name: "empty body", body: ``, status: http.StatusBadRequest, code: dto.ErrCodeInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, jsonRequest(http.MethodPost, "/bind", tt.body))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code == "" {
				return
			}
			env := decodeEnvelope(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, testRequestID, env.Error.RequestID)
			if tt.hasField != "" {
				require.NotEmpty(t, env.Error.Details)
				assert.Equal(t, tt.hasField, env.Error.Details[0].Field)
			}
		})
	}

	t.Run("body over limit", func(t *testing.T) {
		limited := newTestRouter(middleware.BodyLimit(16))
		limited.POST("/bind", func(c *gin.Context) {
			var v bindTarget
			if h.BindJSON(c, &v) {
				h.Success(c, v)
			}
		})
		req := jsonRequest(http.MethodPost, "/bind", `{"name":"abc","quantity":2,"pad":"xxxxxxxxxxxxxxxx"}`)
		req.ContentLength = -1 // chunked, so the limit trips while binding
		w := perform(limited, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, decodeEnvelope(t, w).Error.Code)
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:   "domain error",
			err:    shared.NewDomainError("CART_EMPTY", "Cart is empty"),
			status: http.StatusUnprocessableEntity, code: dto.ErrCodeCartEmpty, message: "Cart is empty",
		},
		{
			name:   "wrapped domain sentinel",
			err:    fmt.Errorf("loading: %w", shared.ErrNotFound),
			status: http.StatusNotFound, code: dto.ErrCodeNotFound,
		},
		{
			name:   "backend error keeps status and code",
			err:    &backend.APIError{Status: http.StatusConflict, Code: "INSUFFICIENT_STOCK", Message: "only 2 left"},
			status: http.StatusConflict, code: dto.ErrCodeInsufficientStock, message: "only 2 left",
		},
		{
			name:   "backend error without code",
			err:    &backend.APIError{Status: http.StatusForbidden},
			status: http.StatusForbidden, code: dto.ErrCodeForbidden, message: "Forbidden",
		},
		{
			name:   "backend unreachable",
			err:    fmt.Errorf("%w: GET /products: connection refused", backend.ErrUnavailable),
			status: http.StatusBadGateway, code: dto.ErrCodeBackendUnavailable,
		},
		{
			name:   "deadline",
			err:    context.DeadlineExceeded,
			status: http.StatusBadGateway, code: dto.ErrCodeBackendUnavailable,
		},
		{
			name:   "anything else",
			err:    io.ErrClosedPipe,
			status: http.StatusInternalServerError, code: dto.ErrCodeInternal, message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			r := newTestRouter()
			r.GET("/err", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := perform(r, jsonRequest(http.MethodGet, "/err", nil))
			assert.Equal(t, tt.status, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, testRequestID, env.Error.RequestID)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Error.Message)
			}
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		r := newTestRouter()
		r.GET("/nil", func(c *gin.Context) {
			h.HandleError(c, nil)
			c.String(http.StatusTeapot, "untouched")
		})
		w := perform(r, jsonRequest(http.MethodGet, "/nil", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}
