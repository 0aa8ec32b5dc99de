package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"projecthub/internal/auth"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	limiterCacheSize = 10000
	// An idle bucket refills well within this, so dropping it is invisible.
	limiterIdleTTL = 10 * time.Minute

	msgRateLimited = "rate limit exceeded"
)

// RateLimiter implements token bucket rate limiting per identity
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter
// requestsPerSecond: number of requests allowed per second
// burst: maximum burst size
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, limiterIdleTTL),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// getLimiter gets or creates a rate limiter for the given key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
	}
	// re-adding refreshes the idle TTL
	rl.limiters.Add(key, limiter)
	return limiter
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// identity keys authenticated requests by user and everything else by IP.
func identity(c echo.Context) string {
	if userID, err := auth.GetUserID(c); err == nil {
		return "user:" + userID.String()
	}
	return "ip:" + c.RealIP()
}

// Middleware returns an Echo middleware function for rate limiting
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(identity(c))

			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
			if !limiter.Allow() {
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusTooManyRequests, msgRateLimited)
			}

			c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", int(limiter.Tokens())))
			return next(c)
		}
	}
}

// NewStrictRateLimiter creates a strict rate limiter for the credential
// endpoints: 5 req/sec, burst of 10.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// NewAPIRateLimiter creates the limiter for authenticated API traffic:
// 100 req/sec, burst of 200.
func NewAPIRateLimiter() *RateLimiter {
	return NewRateLimiter(100, 200)
}
