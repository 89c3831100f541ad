package governor

import (
	"sync"

	"github.com/pagedeck/pagedeck/pkg/plan"
	"github.com/pagedeck/pagedeck/pkg/ratelimit"
)

// LimiterRegistry holds one fixed-window limiter per plan tier, all backed
// by the same store. Limiters for the tiers known at construction are built
// eagerly so the steady-state path never takes the write lock; limiters for
// tiers that appear later (after a plan reload) are built on first use and
// cached.
type LimiterRegistry struct {
	mu       sync.RWMutex
	limiters map[plan.Tier]*ratelimit.FixedWindow
	plans    *plan.Registry
	store    ratelimit.Store
}

// NewLimiterRegistry builds limiters for every tier the plan registry knows
// about. The limiter limit and window come from the tier's plan limits.
func NewLimiterRegistry(plans *plan.Registry, store ratelimit.Store) (*LimiterRegistry, error) {
	if plans == nil {
		return nil, ErrPlansRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	r := &LimiterRegistry{
		limiters: make(map[plan.Tier]*ratelimit.FixedWindow),
		plans:    plans,
		store:    store,
	}
	for _, tier := range plans.Tiers() {
		fw, err := r.build(tier)
		if err != nil {
			return nil, err
		}
		r.limiters[tier] = fw
	}
	return r, nil
}

// ForTier returns the limiter enforcing the given tier's request ceiling.
// Unknown tiers resolve through the plan registry's free-tier fallback.
func (r *LimiterRegistry) ForTier(tier plan.Tier) (*ratelimit.FixedWindow, error) {
	r.mu.RLock()
	fw, ok := r.limiters[tier]
	r.mu.RUnlock()
	if ok {
		return fw, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if fw, ok := r.limiters[tier]; ok {
		return fw, nil
	}
	fw, err := r.build(tier)
	if err != nil {
		return nil, err
	}
	r.limiters[tier] = fw
	return fw, nil
}

func (r *LimiterRegistry) build(tier plan.Tier) (*ratelimit.FixedWindow, error) {
	limits := r.plans.ForTier(tier)
	return ratelimit.NewFixedWindow(r.store, limits.MaxRequestsPerWindow, limits.WindowDuration)
}
