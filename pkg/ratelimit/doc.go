// Package ratelimit implements fixed-window request counting keyed by an
// arbitrary string, typically a tenant identifier or a client address.
//
// The window counter is atomic: concurrent requests for the same key can
// never both observe "under limit" when only one slot remains. Counters
// reset as a whole at the window boundary and are never negative.
//
// Two storage backends are provided: an in-memory store for single-process
// deployments, and a Redis store for sharing counters across instances.
//
//	store := ratelimit.NewMemoryStore()
//	limiter, _ := ratelimit.NewFixedWindow(store, 60, time.Minute)
//
//	result, err := limiter.Allow(ctx, "tenant:"+tenantID)
//	if err == nil && !result.Allowed {
//		// reject with Retry-After: result.RetryAfter()
//	}
package ratelimit
