package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientRateLimiter stores a rate limiter per calling client.
type clientRateLimiter struct {
	clients map[string]*rate.Limiter
	mu      *sync.RWMutex
	r       rate.Limit
	b       int
}

func newClientRateLimiter(r rate.Limit, b int) *clientRateLimiter {
	return &clientRateLimiter{
		clients: make(map[string]*rate.Limiter),
		mu:      &sync.RWMutex{},
		r:       r,
		b:       b,
	}
}

func (l *clientRateLimiter) add(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter := rate.NewLimiter(l.r, l.b)
	l.clients[key] = limiter
	return limiter
}

func (l *clientRateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.clients[key]
	l.mu.RUnlock()

	if !exists {
		return l.add(key)
	}
	return limiter
}

// RateLimiter is a middleware for per-client rate limiting. The client is
// keyed by ipHeader when the fronting proxy sets one, falling back to the
// connection's remote address.
func RateLimiter(r rate.Limit, b int, ipHeader string) gin.HandlerFunc {
	limiter := newClientRateLimiter(r, b)
	return func(c *gin.Context) {
		key := ""
		if ipHeader != "" {
			key = c.GetHeader(ipHeader)
		}
		if key == "" {
			key = c.ClientIP()
		}

		if !limiter.limiterFor(key).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
