package v1

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipRateLimiter keeps one token bucket per client IP. The bucket
// refills at limit/interval and allows a burst of the full limit.
type ipRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*rate.Limiter
}

func newIPRateLimiter(limit int, interval time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		limit:    rate.Limit(float64(limit) / interval.Seconds()),
		burst:    limit,
		visitors: make(map[string]*rate.Limiter),
	}
}

func (l *ipRateLimiter) visitor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.visitors[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.visitors[ip] = limiter
	}
	return limiter
}

// Handle is the gin middleware form of the limiter.
func (l *ipRateLimiter) Handle(c *gin.Context) {
	if !l.visitor(c.ClientIP()).Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "rate limit exceeded",
		})
		return
	}
	c.Next()
}

// NewRateLimitMiddleware builds a per-IP rate limiting middleware
// for the register and login endpoints.
func NewRateLimitMiddleware(limit int, interval time.Duration) gin.HandlerFunc {
	return newIPRateLimiter(limit, interval).Handle
}
