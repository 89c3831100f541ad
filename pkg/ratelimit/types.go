package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request fits in the current window.
	Allowed bool

	// Limit is the maximum number of requests allowed per window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the current window ends and the counter resets.
	ResetAt time.Time
}

// RetryAfter returns how long to wait until the window resets.
// Returns 0 if the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter checks and consumes request slots for a key.
type Limiter interface {
	// Allow consumes one slot for the key if the window has capacity.
	Allow(ctx context.Context, key string) (*Result, error)

	// Status reports the current window state without consuming a slot.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset clears the counter for the key.
	Reset(ctx context.Context, key string) error
}

// Store is the counter storage backend.
//
// IncrementAndGet must be atomic with respect to concurrent callers for the
// same key: the read, window-boundary reset, and increment happen as one
// operation.
type Store interface {
	// IncrementAndGet adds incr to the key's counter, starting a new window
	// if none is active, and returns the new count plus time until reset.
	IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (count int64, ttl time.Duration, err error)

	// Get returns the current count and time until reset without modifying state.
	Get(ctx context.Context, key string) (count int64, ttl time.Duration, err error)

	// Delete removes the key's counter.
	Delete(ctx context.Context, key string) error
}
