package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches any resolution strategy.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantSuspended is returned when the resolved tenant is suspended.
	ErrTenantSuspended = errors.New("tenant is suspended")

	// ErrTenantPending is returned when the resolved tenant is not yet activated.
	ErrTenantPending = errors.New("tenant is pending activation")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrDirectoryRequired is returned when a resolver is created without a directory.
	ErrDirectoryRequired = errors.New("tenant directory is required")

	// ErrNoResolutionInContext is returned when no resolution is found in context.
	ErrNoResolutionInContext = errors.New("no tenant resolution in context")
)
