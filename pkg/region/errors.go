package region

import "errors"

var (
	// ErrUnknownRegion is returned when no connection target is configured
	// for the requested region.
	ErrUnknownRegion = errors.New("region: unknown region")

	// ErrFactoryRequired is returned when a Cache is created without a factory.
	ErrFactoryRequired = errors.New("region: factory is required")

	// ErrCacheClosed is returned when a handle is requested from a closed cache.
	ErrCacheClosed = errors.New("region: cache is closed")

	// ErrConnectFailed is returned when a connection could not be established
	// after all retry attempts.
	ErrConnectFailed = errors.New("region: failed to connect")
)
