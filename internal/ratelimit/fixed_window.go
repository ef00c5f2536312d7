package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
	limit   int
}

// FixedWindow is the in-process limiter. The bucket table is shared by every
// request-handling goroutine, so the check-and-update runs under one lock.
// A limit of 0 never admits.
type FixedWindow struct {
	mu      sync.Mutex
	buckets map[string]bucket

	now func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

func NewFixedWindow() *FixedWindow {
	return &FixedWindow{
		buckets: make(map[string]bucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

func (f *FixedWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()

	existing, ok := f.buckets[key]
	if !ok || !now.Before(existing.resetAt) {
		existing = bucket{count: 0, resetAt: now.Add(window), limit: limit}
	}

	if existing.count < existing.limit {
		existing.count++
		f.buckets[key] = existing
		return Result{
			Allowed:   true,
			Limit:     existing.limit,
			Remaining: maxInt(0, existing.limit-existing.count),
			ResetAt:   existing.resetAt,
		}, nil
	}

	f.buckets[key] = existing
	return Result{
		Allowed:           false,
		Limit:             existing.limit,
		Remaining:         0,
		ResetAt:           existing.resetAt,
		RetryAfterSeconds: retryAfterSeconds(existing.resetAt.Sub(now)),
	}, nil
}

// StartSweeping evicts buckets whose window has passed, bounding the table
// under many distinct end-user identities. Expired buckets are also replaced
// lazily on access, so the sweep only reclaims idle keys.
func (f *FixedWindow) StartSweeping(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.sweep()
			case <-f.stop:
				return
			}
		}
	}()
}

func (f *FixedWindow) Stop() {
	f.stopOnce.Do(func() {
		close(f.stop)
	})
}

func (f *FixedWindow) sweep() {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	for key, b := range f.buckets {
		if !now.Before(b.resetAt) {
			delete(f.buckets, key)
		}
	}
}

func (f *FixedWindow) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buckets)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
