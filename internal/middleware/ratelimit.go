package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter tracks request timestamps per key inside a sliding window.
// Keys are IPs for anonymous traffic and account IDs once authenticated,
// so a shared office IP does not starve every client behind it.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	kept := rl.seen[key][:0]
	for _, t := range rl.seen[key] {
		if now.Sub(t) < rl.window {
			kept = append(kept, t)
		}
	}
	if len(kept) >= rl.limit {
		rl.seen[key] = kept
		return false
	}
	rl.seen[key] = append(kept, now)
	return true
}

func (rl *RateLimiter) evictLoop() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		rl.mu.Lock()
		now := time.Now()
		for key, times := range rl.seen {
			kept := times[:0]
			for _, t := range times {
				if now.Sub(t) < rl.window {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				delete(rl.seen, key)
			} else {
				rl.seen[key] = kept
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit limits by authenticated account when available, by IP otherwise.
// It must run after AuthRequired on authed groups to pick up the account key;
// on the global chain it sees only IPs, which is fine for login and refresh.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id := GetClientID(c); id != 0 {
			key = "client:" + strconv.FormatUint(uint64(id), 10)
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
