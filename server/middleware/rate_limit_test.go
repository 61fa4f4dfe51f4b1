package middleware

import (
	"testing"

	"golang.org/x/time/rate"
)

func TestRateLimiter_PerUserIsolation(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)

	if !rl.AllowUser(1) || !rl.AllowUser(1) {
		t.Fatal("burst of 2 must be allowed")
	}
	if rl.AllowUser(1) {
		t.Error("third immediate request must be throttled")
	}

	// Another user has an untouched bucket.
	if !rl.AllowUser(2) {
		t.Error("a different user must not be throttled")
	}
}
