package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket
type RateLimiter struct {
	mu             sync.Mutex
	visitors       map[string]*visitor
	limit          rate.Limit
	burst          int
	idle           time.Duration
	endpointLimits map[string]endpointLimit
}

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// NewRateLimiter allows rps requests per second with bursts of burst per IP.
// Login and registration get a stricter bucket.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			"/api/v1/auth/login":    {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/v1/auth/register": {limit: rate.Every(500 * time.Millisecond), burst: 5},
		},
	}
}

// RateLimit returns the Echo middleware. Static uploads are not limited.
func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, "/uploads/") {
				return next(c)
			}

			limit, burst := r.limit, r.burst
			path := c.Path()
			if l, ok := r.endpointLimits[path]; ok {
				limit, burst = l.limit, l.burst
			} else {
				path = ""
			}

			if !r.getLimiter(c.RealIP()+path, limit, burst).Allow() {
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"success": false,
					"message": "Too many requests",
				})
			}
			return next(c)
		}
	}
}

func (r *RateLimiter) getLimiter(key string, limit rate.Limit, burst int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	v, exists := r.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(limit, burst)}
		r.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Cleanup forgets visitors idle for longer than the idle window.
func (r *RateLimiter) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-r.idle)
	for key, v := range r.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(r.visitors, key)
		}
	}
}

// Run calls Cleanup every interval until done is closed.
func (r *RateLimiter) Run(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Cleanup()
		case <-done:
			return
		}
	}
}
