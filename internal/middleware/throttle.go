package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/response"
)

const throttleIdleTTL = 10 * time.Minute

// Throttle is a per-IP token bucket for public credential endpoints.
type Throttle struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*throttleEntry
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewThrottle allows perMinute requests per IP with the given burst. It returns
// nil when perMinute is not positive, and a nil Throttle admits everything.
func NewThrottle(perMinute, burst int) *Throttle {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		now:     time.Now,
		clients: make(map[string]*throttleEntry),
	}
}

// Handler returns the gin middleware.
func (t *Throttle) Handler() gin.HandlerFunc {
	if t == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if !t.limiterFor(c.ClientIP()).AllowN(t.now(), 1) {
			response.Abort(c, appErrors.Clone(appErrors.ErrRateLimited, "too many requests, slow down"))
			return
		}
		c.Next()
	}
}

func (t *Throttle) limiterFor(key string) *rate.Limiter {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.clients[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	for k, entry := range t.clients {
		if now.Sub(entry.lastSeen) > throttleIdleTTL {
			delete(t.clients, k)
		}
	}
	limiter := rate.NewLimiter(t.limit, t.burst)
	t.clients[key] = &throttleEntry{limiter: limiter, lastSeen: now}
	return limiter
}
