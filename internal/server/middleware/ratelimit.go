package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	DefaultIdleTTL       = 15 * time.Minute
	DefaultSweepInterval = time.Minute
)

type bucket struct {
	*rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client address. Idle buckets are
// dropped by Sweep, which Run calls on a ticker.
type IPRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// NewIPRateLimiter allows requestsPerMinute per address with the given burst.
// Values below one are raised to one.
func NewIPRateLimiter(requestsPerMinute, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(time.Minute / time.Duration(max(requestsPerMinute, 1))),
		burst:   max(burst, 1),
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
	}
}

// Allow takes one token from the bucket of ip.
func (r *IPRateLimiter) Allow(ip string) bool {
	now := r.now()

	r.mu.Lock()
	b, ok := r.buckets[ip]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[ip] = b
	}
	b.lastSeen = now
	r.mu.Unlock()

	return b.AllowN(now, 1)
}

// Sweep drops buckets unused for longer than the idle TTL and reports how
// many were removed.
func (r *IPRateLimiter) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for ip, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, ip)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *IPRateLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *IPRateLimiter) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

// Middleware rejects requests over the per-address budget with 429.
func (r *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !r.Allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
