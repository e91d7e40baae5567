package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitStore counts hits per key inside a fixed window
type RateLimitStore interface {
	// Hit records one request and returns the count in the current window
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Name prefixes store keys so limiters sharing a store stay separate
	Name string
	// Requests is the maximum number of requests allowed within the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
	// KeyFunc is a function that returns a unique key for rate limiting (defaults to IP)
	KeyFunc func(c echo.Context) string
	// Message is the error message returned when rate limit is exceeded
	Message string
	// Store defaults to an in-process store
	Store RateLimitStore
}

// RateLimiter is a per-endpoint rate limiter
type RateLimiter struct {
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.Message == "" {
		config.Message = "Too many requests. Please try again later."
	}
	if config.Name == "" {
		config.Name = "default"
	}
	if config.Store == nil {
		config.Store = NewMemoryRateLimitStore()
	}
	return &RateLimiter{config: config}
}

// Middleware returns the rate limiting middleware. Store failures let the
// request through.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "rl:" + rl.config.Name + ":" + rl.config.KeyFunc(c)
			count, err := rl.config.Store.Hit(c.Request().Context(), key, rl.config.Window)
			if err != nil {
				zap.L().Warn("rate limiter store unavailable", zap.String("limiter", rl.config.Name), zap.Error(err))
				return next(c)
			}
			if count > int64(rl.config.Requests) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(rl.config.Window.Seconds())))
				return echo.NewHTTPError(http.StatusTooManyRequests, rl.config.Message)
			}
			return next(c)
		}
	}
}

// rateLimitEntry tracks request count and window expiration
type rateLimitEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryRateLimitStore keeps counters in process memory
type MemoryRateLimitStore struct {
	store map[string]*rateLimitEntry
	mu    sync.Mutex
}

// NewMemoryRateLimitStore creates an in-process store and starts its cleanup loop
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	s := &MemoryRateLimitStore{store: make(map[string]*rateLimitEntry)}
	go s.cleanup()
	return s
}

func (s *MemoryRateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, exists := s.store[key]
	if !exists || now.After(entry.expiresAt) {
		s.store[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
		return 1, nil
	}
	entry.count++
	return entry.count, nil
}

// cleanup removes expired entries every minute
func (s *MemoryRateLimitStore) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for key, entry := range s.store {
			if now.After(entry.expiresAt) {
				delete(s.store, key)
			}
		}
		s.mu.Unlock()
	}
}

var redisFixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisRateLimitStore shares counters between instances through Redis
type RedisRateLimitStore struct {
	client redis.UniversalClient
}

// NewRedisRateLimitStore connects to the Redis server at url (redis://...)
func NewRedisRateLimitStore(url string) (*RedisRateLimitStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return &RedisRateLimitStore{client: redis.NewClient(opts)}, nil
}

func (s *RedisRateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	ms := window.Milliseconds()
	if ms <= 0 {
		ms = time.Minute.Milliseconds()
	}
	return redisFixedWindowScript.Run(ctx, s.client, []string{key}, ms).Int64()
}

// Ping checks the connection
func (s *RedisRateLimitStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool
func (s *RedisRateLimitStore) Close() error {
	return s.client.Close()
}

// Limiters groups the app's rate limiters so they share one store
type Limiters struct {
	Login        *RateLimiter
	PublicSubmit *RateLimiter
	PublicRead   *RateLimiter
	Webhook      *RateLimiter
}

// NewLimiters builds the app's limiters on top of store
func NewLimiters(store RateLimitStore) *Limiters {
	return &Limiters{
		Login: NewRateLimiter(RateLimitConfig{
			Name:     "login",
			Requests: 5,
			Window:   1 * time.Minute,
			Message:  "Too many login attempts. Please wait a minute before trying again.",
			Store:    store,
		}),
		PublicSubmit: NewRateLimiter(RateLimitConfig{
			Name:     "public-submit",
			Requests: 10,
			Window:   1 * time.Minute,
			Message:  "Too many submissions. Please wait before trying again.",
			Store:    store,
		}),
		PublicRead: NewRateLimiter(RateLimitConfig{
			Name:     "public-read",
			Requests: 120,
			Window:   1 * time.Minute,
			Message:  "Rate limit exceeded. Please slow down your requests.",
			Store:    store,
		}),
		Webhook: NewRateLimiter(RateLimitConfig{
			Name:     "webhook",
			Requests: 300,
			Window:   1 * time.Minute,
			KeyFunc:  func(c echo.Context) string { return c.Param("subdomain") },
			Store:    store,
		}),
	}
}
