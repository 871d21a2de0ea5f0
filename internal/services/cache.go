package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL is used for answers when no TTL is given
	DefaultCacheTTL = 8 * time.Hour
	MinCacheTTL     = 6 * time.Hour
	MaxCacheTTL     = 12 * time.Hour

	cacheOpTimeout = 2 * time.Second
)

// CacheService is a JSON cache on Redis with TTLs clamped to 6-12 hours.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

// Get loads key into dest. A miss is (false, nil).
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, CacheKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetWithTTL stores value as JSON under key.
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}
	if ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKeyPrefix+key, data, ttl).Err()
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

// RedisAnswerCache implements AnswerCache on CacheService.
type RedisAnswerCache struct {
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisAnswerCache(cache *CacheService, logger *zap.Logger) *RedisAnswerCache {
	return &RedisAnswerCache{cache: cache, ttl: DefaultCacheTTL, logger: logger}
}

// answerKey hashes the normalized question so keys stay short and opaque.
func answerKey(question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := blake2b.Sum256([]byte(normalized))
	return CacheKey("answer", hex.EncodeToString(sum[:]))
}

func (a *RedisAnswerCache) GetAnswer(ctx context.Context, question string) (Answer, bool) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	var answer Answer
	ok, err := a.cache.Get(ctx, answerKey(question), &answer)
	if err != nil {
		a.logger.Debug("answer cache read failed", zap.Error(err))
		return Answer{}, false
	}
	if !ok || answer.Answer == "" {
		return Answer{}, false
	}
	return answer, true
}

func (a *RedisAnswerCache) PutAnswer(ctx context.Context, question string, answer Answer) {
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	answer.Cached = false
	if err := a.cache.SetWithTTL(ctx, answerKey(question), answer, a.ttl); err != nil {
		a.logger.Debug("answer cache write failed", zap.Error(err))
	}
}
