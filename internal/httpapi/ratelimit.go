package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/oggyb/muzz-matching/internal/api"
)

// KindRateLimited is the error kind of a 429 response.
const KindRateLimited = "rate_limited"

// limiterIdleTTL is how long an unused per-viewer limiter is kept.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ViewerRateLimiter keeps one token bucket per viewer.
type ViewerRateLimiter struct {
	mu        sync.Mutex
	viewers   map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewViewerRateLimiter allows perSecond sustained requests with the given burst.
// A non-positive perSecond disables limiting.
func NewViewerRateLimiter(perSecond float64, burst int) *ViewerRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ViewerRateLimiter{
		viewers: make(map[string]*limiterEntry),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

func (rl *ViewerRateLimiter) Allow(viewer string) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > limiterIdleTTL {
		for id, e := range rl.viewers {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(rl.viewers, id)
			}
		}
		rl.lastSweep = now
	}

	e, ok := rl.viewers[viewer]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.viewers[viewer] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Middleware rejects over-limit viewers with 429. It must run after the
// viewer middleware.
func (rl *ViewerRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(viewerID(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{
				Error: api.ErrorDetail{Kind: KindRateLimited, Message: "too many requests"},
			})
			return
		}
		c.Next()
	}
}
