package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/feedback-tracker/pkg/clientip"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// RateLimitWindow is the fixed window length for the Redis limiter
	RateLimitWindow = 60 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 20
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:ask:"
)

// RedisRateLimiter is a fixed-window counter shared by every instance.
type RedisRateLimiter struct {
	client      *redis.Client
	window      time.Duration
	maxRequests int
	logger      *zap.Logger
}

func NewRedisRateLimiter(client *redis.Client, logger *zap.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:      client,
		window:      RateLimitWindow,
		maxRequests: RateLimitMaxRequests,
		logger:      logger,
	}
}

// Middleware counts requests per IP and returns 429 past the limit. Redis
// failures let the request through.
func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := RateLimitKeyPrefix + clientip.RealClientIP(r)

		n, err := l.client.Incr(ctx, key).Result()
		if err == nil && n == 1 {
			// First request in this window
			err = l.client.Expire(ctx, key, l.window).Err()
		}
		if err != nil {
			l.logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		count := int(n)
		if count > l.maxRequests {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			tooManyRequests(w, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(l.maxRequests-count))
		next.ServeHTTP(w, r)
	})
}
