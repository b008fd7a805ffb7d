package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const sweepInterval = 5 * time.Minute

type bucket struct {
	tokens float64
	seen   time.Time
}

// RateLimiter is a token bucket per key. Each key may burst to the limit
// and earns tokens back evenly across the window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   float64
	window  time.Duration
	perSec  float64
	now     func() time.Time
}

// NewRateLimiter allows maxRequests per key within perDuration.
func NewRateLimiter(maxRequests int, perDuration time.Duration) *RateLimiter {
	rl := newRateLimiter(maxRequests, perDuration, time.Now)
	go rl.sweepLoop()
	return rl
}

func newRateLimiter(maxRequests int, perDuration time.Duration, now func() time.Time) *RateLimiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	if perDuration <= 0 {
		perDuration = time.Minute
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   float64(maxRequests),
		window:  perDuration,
		perSec:  float64(maxRequests) / perDuration.Seconds(),
		now:     now,
	}
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		rl.sweep()
	}
}

// sweep forgets keys idle for a full window. A bucket idle that long is
// full again.
func (rl *RateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	dropped := 0
	for key, b := range rl.buckets {
		if b.seen.Before(cutoff) {
			delete(rl.buckets, key)
			dropped++
		}
	}
	return dropped
}

// take spends one token for key. When none is left it reports how long until
// the next one.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.limit, seen: now}
		rl.buckets[key] = b
	}

	b.tokens = math.Min(rl.limit, b.tokens+now.Sub(b.seen).Seconds()*rl.perSec)
	b.seen = now

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) / rl.perSec * float64(time.Second))
		return false, wait
	}
	b.tokens--
	return true, 0
}

func (rl *RateLimiter) allow(key string) bool {
	ok, _ := rl.take(key)
	return ok
}

// Middleware rate limits requests per client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return rl.KeyedMiddleware(func(c *gin.Context) string { return c.ClientIP() })
}

// KeyedMiddleware rate limits requests per key. An empty key falls back to
// the client IP.
func (rl *RateLimiter) KeyedMiddleware(key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if k == "" {
			k = c.ClientIP()
		}
		ok, wait := rl.take(k)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			c.Abort()
			return
		}
		c.Next()
	}
}
