package ratelimit

import (
	"context"
	"time"
)

// FixedWindow is a fixed-window rate limiter: up to limit requests per
// window, with the counter resetting as a whole at the window boundary.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
}

// NewFixedWindow creates a fixed-window limiter over the given store.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	return &FixedWindow{
		store:  store,
		limit:  limit,
		window: window,
	}, nil
}

// Allow consumes one slot for the key if the current window has capacity.
// The increment-and-check is a single atomic store operation, so two
// concurrent requests can never both claim the last slot.
func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, ttl, err := fw.store.IncrementAndGet(ctx, key, 1, fw.window)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   count <= int64(fw.limit),
		Limit:     fw.limit,
		Remaining: max(0, fw.limit-int(count)),
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// Status reports the current window state without consuming a slot.
func (fw *FixedWindow) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, ttl, err := fw.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = fw.window
	}

	return &Result{
		Allowed:   count < int64(fw.limit),
		Limit:     fw.limit,
		Remaining: max(0, fw.limit-int(count)),
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// Reset clears the counter for the key.
func (fw *FixedWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return fw.store.Delete(ctx, key)
}
