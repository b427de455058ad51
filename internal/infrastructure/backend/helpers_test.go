package backend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captured struct {
	Method  string
	Path    string
	RawPath string
	Query   map[string]string
	Body    map[string]any
	RawBody string
	Header  http.Header
}

type recorder struct {
	mu       sync.Mutex
	requests []captured
}

func (r *recorder) last(t *testing.T) captured {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.requests, "no request reached the backend")
	return r.requests[len(r.requests)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// newBackend starts a fake backend; respond decides the answer for the n-th
// request (0-based).
func newBackend(t *testing.T, respond func(n int, w http.ResponseWriter)) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		c := captured{
			Method:  r.Method,
			Path:    r.URL.Path,
			RawPath: r.URL.EscapedPath(),
			Query:   map[string]string{},
			RawBody: string(raw),
			Header:  r.Header.Clone(),
		}
		for k := range r.URL.Query() {
			c.Query[k] = r.URL.Query().Get(k)
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &c.Body)
		}

		rec.mu.Lock()
		n := len(rec.requests)
		rec.requests = append(rec.requests, c)
		rec.mu.Unlock()

		respond(n, w)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		RetryCount: 1,
		RetryDelay: time.Millisecond,
		UserAgent:  "storefront-test",
	})
	require.NoError(t, err)
	return client, rec
}

func jsonResponse(status int, body string) func(int, http.ResponseWriter) {
	return func(_ int, w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func ok(data string) func(int, http.ResponseWriter) {
	return jsonResponse(http.StatusOK, `{"success":true,"data":`+data+`}`)
}
