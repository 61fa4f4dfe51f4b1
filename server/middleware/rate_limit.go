package middleware

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps an independent token bucket per key. Chat endpoints key
// it by user ID so one noisy tenant cannot starve the rest.
type RateLimiter struct {
	mu     sync.Mutex
	limit  rate.Limit
	burst  int
	limits map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter granting limit events per second with the
// given burst per key.
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		burst:  burst,
		limits: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// AllowUser reports whether the user may proceed right now.
func (rl *RateLimiter) AllowUser(userID int32) bool {
	return rl.getLimiter(userKey(userID)).Allow()
}

// WaitUser blocks until the user may proceed or the context is done.
func (rl *RateLimiter) WaitUser(ctx context.Context, userID int32) error {
	return rl.getLimiter(userKey(userID)).Wait(ctx)
}

func userKey(userID int32) string {
	return fmt.Sprintf("user:%d", userID)
}
