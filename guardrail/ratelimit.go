package guardrail

import (
	"sync"
	"time"

	"github.com/hupe1980/researchmesh/core"
)

// ReasonRateLimited is the verdict reason emitted on a denied rate limit check.
const ReasonRateLimited = "rate_limited"

// RateLimiter bounds accepted operations per actor within a sliding wall-clock
// window. The window is recomputed on every check by discarding timestamps
// older than the window, so there are no fixed-bucket boundary bursts. A
// denied check does not consume a slot. Safe for concurrent use; all state is
// guarded by a single mutex.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  map[string][]time.Time
	now    func() time.Time
}

// NewRateLimiter creates a limiter allowing limit operations per actor within
// the trailing window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		calls:  make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow checks whether the actor may perform another operation. An allowed
// check consumes one slot in the current window.
func (r *RateLimiter) Allow(actor string) core.Verdict {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	recent := r.pruneLocked(actor, now)

	if len(recent) >= r.limit {
		return core.Deny(ReasonRateLimited)
	}

	r.calls[actor] = append(recent, now)

	return core.Allow()
}

// Remaining returns the number of slots left for the actor in the current window.
func (r *RateLimiter) Remaining(actor string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	recent := r.pruneLocked(actor, r.now())

	return r.limit - len(recent)
}

// pruneLocked discards timestamps older than the window and stores the result.
// Caller must hold the mutex.
func (r *RateLimiter) pruneLocked(actor string, now time.Time) []time.Time {
	cutoff := now.Add(-r.window)
	history := r.calls[actor]
	recent := history[:0]
	for _, ts := range history {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	r.calls[actor] = recent
	return recent
}
