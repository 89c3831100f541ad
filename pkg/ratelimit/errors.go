package ratelimit

import "errors"

var (
	// ErrStoreRequired is returned when a limiter is created without a store.
	ErrStoreRequired = errors.New("ratelimit: store is required")

	// ErrInvalidLimit is returned when the request ceiling is not positive.
	ErrInvalidLimit = errors.New("ratelimit: limit must be positive")

	// ErrInvalidWindow is returned when the window duration is not positive.
	ErrInvalidWindow = errors.New("ratelimit: window must be positive")

	// ErrKeyRequired is returned when an empty key is passed to a limiter.
	ErrKeyRequired = errors.New("ratelimit: key is required")
)
