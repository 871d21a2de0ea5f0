package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/AnshRaj112/feedback-tracker/pkg/clientip"
	"golang.org/x/time/rate"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// --- Per-IP token bucket (used for /api/ask when Redis is not configured) ---

const (
	AskRateLimitEvery = 3 * time.Second
	AskRateLimitBurst = 10

	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// IPRateLimiter keeps one token bucket per client IP. Idle buckets are dropped by Run.
type IPRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// NewAskRateLimiter returns the default limiter for the ask endpoint.
func NewAskRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Every(AskRateLimitEvery), AskRateLimitBurst)
}

func (l *IPRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = l.now()
	return e.limiter
}

// Allow reports whether ip may make a request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.get(ip).Allow()
}

// cleanup drops entries idle for longer than limiterTTL.
func (l *IPRateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for ip, e := range l.entries {
		if now.Sub(e.lastUse) > limiterTTL {
			delete(l.entries, ip)
		}
	}
}

// Run drops idle entries periodically until ctx is done.
func (l *IPRateLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.cleanup()
		}
	}
}

// Middleware returns 429 when the caller's bucket is empty.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientip.RealClientIP(r)) {
			tooManyRequests(w, "Too many questions. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tooManyRequests(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}

// ProductionSecurity returns middlewares applied to every route in production.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
	}
}
