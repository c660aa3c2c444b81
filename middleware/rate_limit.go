package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows each authenticated user maxRequests per window, with bursts up to
// maxRequests. Idle entries are dropped on later calls.
func RateLimiter(maxRequests int, window time.Duration) fiber.Handler {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	var (
		mu        sync.Mutex
		visitors  = make(map[string]*visitor)
		lastSweep = time.Now()
		expiry    = max(3*window, time.Minute)
		every     = rate.Every(window / time.Duration(maxRequests))
	)

	return func(c *fiber.Ctx) error {
		key := UserID(c).String()
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > expiry {
			for k, v := range visitors {
				if now.Sub(v.lastSeen) > expiry {
					delete(visitors, k)
				}
			}
			lastSweep = now
		}
		v, ok := visitors[key]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(every, maxRequests)}
			visitors[key] = v
		}
		v.lastSeen = now
		mu.Unlock()

		if !v.limiter.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many checkout attempts, try again shortly"})
		}
		return c.Next()
	}
}
