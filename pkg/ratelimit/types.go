package ratelimit

import (
	"context"
	"time"
)

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	Remaining int

	// ResetAt is the time when the rate limit window resets.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter is the interface shared by rate limiting implementations.
type Limiter interface {
	// Allow checks if a single request is allowed for the given key.
	// If allowed, it consumes one slot.
	Allow(ctx context.Context, key string) (*Result, error)

	// AllowN checks if n requests are allowed for the given key.
	// If allowed, it consumes n slots.
	AllowN(ctx context.Context, key string, n int) (*Result, error)

	// Status returns the current status without consuming slots.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset clears the rate limit state for the given key.
	Reset(ctx context.Context, key string) error
}

// Store is the counter backend used by FixedWindow.
type Store interface {
	// IncrementAndGet atomically increments the counter for the key and
	// returns the new value with the remaining window TTL. A new or
	// expired bucket is created with the full window.
	IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (current int64, ttl time.Duration, err error)

	// Get returns the current counter value and TTL for the key.
	Get(ctx context.Context, key string) (current int64, ttl time.Duration, err error)

	// Delete removes the key from the store.
	Delete(ctx context.Context, key string) error
}

// SlidingWindowStore extends Store with timestamp-window operations.
type SlidingWindowStore interface {
	Store

	// RecordIfAllowed atomically counts live timestamps for the key,
	// records n new ones when the limit permits, and returns whether the
	// record happened along with the resulting count.
	RecordIfAllowed(ctx context.Context, key string, timestamp time.Time, window time.Duration, limit, n int) (allowed bool, count int64, err error)

	// CountInWindow returns the number of timestamps inside the trailing
	// window, pruning expired ones.
	CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}
