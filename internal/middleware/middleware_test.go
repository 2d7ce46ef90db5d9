package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryCounter is an in-process ratelimit.Counter.
type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: make(map[string]int64)}
}

func (m *memoryCounter) IncrWithExpire(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

// =========================================================================
// LOGGER
// =========================================================================

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := chimiddleware.RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/characters", nil))

	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "request_id=")
	assert.Contains(t, out, "path=/characters")
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rr := httptest.NewRecorder()
	w := wrap(rr)
	w.WriteHeader(http.StatusTeapot)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("hi"))

	assert.Equal(t, http.StatusTeapot, w.statusCode)
	assert.Equal(t, int64(2), w.written)
}

// =========================================================================
// METRICS
// =========================================================================

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics())
	r.Get("/assets/*", okHandler)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/assets/*", "200"))

	for _, p := range []string{"/assets/app.js", "/assets/app.css"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/assets/*", "200"))
	assert.Equal(t, before+2, after)
}

func TestSetStorageAvailable(t *testing.T) {
	SetStorageAvailable(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(storageAvailable))
	SetStorageAvailable(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(storageAvailable))
}

// =========================================================================
// RATE LIMIT
// =========================================================================

func TestRateLimit_RejectsOverCeiling(t *testing.T) {
	h := RateLimit(newMemoryCounter(), RateLimitConfig{RequestsPerMinute: 2, Burst: 1}, discardLogger())(okHandler)

	codes := []int{}
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/rpc", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)

		if rr.Code == http.StatusTooManyRequests {
			assert.Equal(t, "60", rr.Header().Get("Retry-After"))
			assert.Contains(t, rr.Body.String(), "rate_limited")
		}
	}
	assert.Equal(t, []int{200, 200, 200, 429}, codes)
}

func TestRateLimit_SeparatesClients(t *testing.T) {
	h := RateLimit(newMemoryCounter(), RateLimitConfig{RequestsPerMinute: 1}, discardLogger())(okHandler)

	for _, addr := range []string{"203.0.113.1:1", "203.0.113.2:1"} {
		req := httptest.NewRequest(http.MethodPost, "/api/rpc", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	counter := newMemoryCounter()
	counter.err = errors.New("redis: connection refused")
	h := RateLimit(counter, RateLimitConfig{RequestsPerMinute: 0}, discardLogger())(okHandler)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/rpc", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestClientFingerprint(t *testing.T) {
	a := httptest.NewRequest(http.MethodGet, "/", nil)
	a.RemoteAddr = "203.0.113.7:1111"
	a.Header.Set("User-Agent", "firefox")

	b := httptest.NewRequest(http.MethodGet, "/", nil)
	b.RemoteAddr = "203.0.113.7:2222"
	b.Header.Set("User-Agent", "firefox")

	c := httptest.NewRequest(http.MethodGet, "/", nil)
	c.RemoteAddr = "203.0.113.7:1111"
	c.Header.Set("User-Agent", "curl")

	assert.Equal(t, ClientFingerprint(a), ClientFingerprint(b), "port must not matter")
	assert.NotEqual(t, ClientFingerprint(a), ClientFingerprint(c))
	assert.Len(t, ClientFingerprint(a), 24)
	assert.False(t, strings.Contains(ClientFingerprint(a), "203.0.113.7"))
}

// =========================================================================
// CORS
// =========================================================================

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"http://localhost:*"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/rpc", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	h := CORS([]string{"http://localhost:*"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
