package alerts

import (
	"sync"

	"golang.org/x/time/rate"
)

// userLimiter hands out one token bucket per user. Buckets are created lazily
// on first use and live for the service lifetime.
type userLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newUserLimiter(limit rate.Limit, burst int) *userLimiter {
	return &userLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// allow reports whether the user may send now, consuming one token if so.
func (ul *userLimiter) allow(userID string) bool {
	ul.mu.Lock()
	lim, ok := ul.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(ul.limit, ul.burst)
		ul.limiters[userID] = lim
	}
	ul.mu.Unlock()

	return lim.Allow()
}
