package governor

import "errors"

var (
	// ErrRateLimited is returned when a tenant exceeds its plan's request
	// ceiling within the current window. Terminal for this request; the
	// caller may retry after the window elapses.
	ErrRateLimited = errors.New("governor: rate limit exceeded")

	// ErrRequestTimeout is returned when the overall per-request deadline
	// elapsed. In-flight downstream work is abandoned, not cancelled.
	ErrRequestTimeout = errors.New("governor: request deadline exceeded")

	// ErrPlansRequired is returned when a governor is created without a
	// plan registry.
	ErrPlansRequired = errors.New("governor: plan registry is required")

	// ErrStoreRequired is returned when a governor is created without a
	// rate limit store.
	ErrStoreRequired = errors.New("governor: rate limit store is required")
)
