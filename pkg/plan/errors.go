package plan

import "errors"

var (
	// ErrSourceRequired is returned when a Registry is created without a source.
	ErrSourceRequired = errors.New("plan: source is required")

	// ErrNoFreeTier is returned when the loaded limits table has no entry for
	// the free tier, which is required as the fallback for unknown tiers.
	ErrNoFreeTier = errors.New("plan: limits table must define the free tier")

	// ErrInvalidLimits is returned when a limits entry fails validation.
	ErrInvalidLimits = errors.New("plan: invalid limits entry")
)
