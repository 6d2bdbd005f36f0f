package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ventech/ventech_api/internal/utils"
)

const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows perMinute events per IP with an equal burst.
// Idle entries are swept until ctx is cancelled.
func NewIPRateLimiter(ctx context.Context, perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	rl := &IPRateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
	go rl.cleanup(ctx)
	return rl
}

// Allow consumes one token for ip.
func (r *IPRateLimiter) Allow(ip string) bool {
	return r.get(ip).Allow()
}

// Blocked reports whether ip has no tokens left, without consuming one.
func (r *IPRateLimiter) Blocked(ip string) bool {
	return r.get(ip).Tokens() < 1
}

func (r *IPRateLimiter) get(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.visitors[ip] = v
	}
	v.lastSeen = r.now()
	return v.limiter
}

func (r *IPRateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *IPRateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, v := range r.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(r.visitors, ip)
		}
	}
}

// RateLimit rejects requests once the client IP runs out of tokens.
func RateLimit(rl *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
