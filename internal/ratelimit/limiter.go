package ratelimit

import (
	"context"
	"time"
)

// Result reports one admission decision. Limit, Remaining and ResetAt are
// populated on every evaluation so callers can emit rate-limit headers
// whether or not the request was admitted; RetryAfterSeconds is meaningful
// only when Allowed is false.
type Result struct {
	Allowed           bool
	Limit             int
	Remaining         int
	ResetAt           time.Time
	RetryAfterSeconds int
}

// ResetUnix returns the reset instant as ceiling-rounded unix seconds, the
// shape the X-RateLimit-Reset header carries.
func (r Result) ResetUnix() int64 {
	ms := r.ResetAt.UnixMilli()
	secs := ms / 1000
	if ms%1000 != 0 {
		secs++
	}
	return secs
}

// Limiter admits or rejects one unit of work for a key under a fixed-window
// quota. Implementations must evaluate the whole check-and-update
// atomically; limit and window travel with the call because each game may
// override the process defaults.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

func retryAfterSeconds(until time.Duration) int {
	secs := int((until + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
