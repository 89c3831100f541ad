package plan

import (
	"errors"
	"fmt"
	"maps"
	"sync"
)

// Registry resolves a tier to its Limits.
//
// The table is loaded once at construction and is immutable afterwards, so
// lookups are lock-free reads on the request path. Reload swaps in a fresh
// table atomically for deployments that change plan configuration at runtime.
type Registry struct {
	source Source

	mu     sync.RWMutex
	limits map[Tier]Limits
}

// NewRegistry loads the limits table from source and validates it.
// The table must define the free tier: it is the fallback for every
// unknown or missing tier.
func NewRegistry(source Source) (*Registry, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	r := &Registry{source: source}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the limits table from the source.
// The previous table stays in effect if the reload fails.
func (r *Registry) Reload() error {
	limits, err := r.source.Load()
	if err != nil {
		return err
	}

	free, ok := limits[TierFree]
	if !ok {
		return ErrNoFreeTier
	}
	if err := free.Validate(); err != nil {
		return err
	}

	var errs []error
	for tier, l := range limits {
		if err := l.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tier %q: %w", tier, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.mu.Lock()
	r.limits = limits
	r.mu.Unlock()
	return nil
}

// ForTier returns the limits for the given tier.
// Tiers absent from the table resolve to the free tier's limits.
func (r *Registry) ForTier(tier Tier) Limits {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if l, ok := r.limits[tier]; ok {
		return l
	}
	return r.limits[TierFree]
}

// Tiers returns the tiers present in the loaded table.
func (r *Registry) Tiers() []Tier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tiers := make([]Tier, 0, len(r.limits))
	for tier := range maps.Keys(r.limits) {
		tiers = append(tiers, tier)
	}
	return tiers
}
