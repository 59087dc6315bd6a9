package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/lastutorials/pdfsplit/pkg/metrics"
	"golang.org/x/time/rate"
)

// limiterKey prefers the authenticated subject (NAT-friendly) and falls
// back to the client IP.
func limiterKey(c *gin.Context) string {
	if sub := c.GetString(SubjectKey); sub != "" {
		return "sub:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// memoryLimiters is a per-key token-bucket store owned by one middleware.
type memoryLimiters struct {
	rps   rate.Limit
	burst int
	m     sync.Map // map[string]*rate.Limiter
}

func (l *memoryLimiters) get(key string) *rate.Limiter {
	if v, ok := l.m.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.m.LoadOrStore(key, rate.NewLimiter(l.rps, l.burst))
	return v.(*rate.Limiter)
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket limit per key.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := &memoryLimiters{rps: rate.Limit(rps), burst: burst}
	return func(c *gin.Context) {
		if !store.get(limiterKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
