package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get(headerXContentTypeOptions))
	assert.Equal(t, "DENY", rec.Header().Get(headerXFrameOptions))
	assert.NotEmpty(t, rec.Header().Get(headerStrictTransportSecurity))
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{" http://localhost:5173 ", ""})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/feedback", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIPRateLimiterMiddleware(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(time.Hour), 2)
	h := l.Middleware(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/ask", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodPost, "/api/ask", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per IP")
}

func TestIPRateLimiterCleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Every(time.Second), 1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(limiterTTL / 2)
	l.Allow("b")
	now = now.Add(limiterTTL/2 + time.Minute)
	l.cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.entries, "a")
	assert.Contains(t, l.entries, "b")
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	h := NewRedisRateLimiter(client, zaptest.NewLogger(t)).Middleware(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ask", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/stats", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, 3, fields["bytes"])
}
