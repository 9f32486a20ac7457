package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-cms/core/internal/metrics"
	"github.com/inkwell-cms/core/internal/pkg/response"
)

type windowCounter struct {
	start time.Time
	count int
}

// Limiter is an in-process fixed-window rate limiter keyed by client IP.
// Counters reset when their window elapses; state is per process.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	clients map[string]*windowCounter
}

func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  window,
		clients: make(map[string]*windowCounter),
	}
}

// Allow records a request from ip at the given instant and reports whether
// it fits in the current window.
func (l *Limiter) Allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[ip]
	if !ok || now.Sub(w.start) >= l.window {
		l.clients[ip] = &windowCounter{start: now, count: 1}
		return true
	}
	w.count++
	return w.count <= l.max
}

// Middleware applies the limit to every request.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}
		if !l.Allow(ip, time.Now()) {
			metrics.RateLimitedTotal.Inc()
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
