package governor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pagedeck/pagedeck/pkg/plan"
	"github.com/pagedeck/pagedeck/pkg/ratelimit"
	"github.com/pagedeck/pagedeck/pkg/tenant"
)

// Decision is the outcome of a governed admission check. It is populated
// whether or not the request was admitted; on a rate-limit rejection the
// Result carries the window reset time for Retry-After reporting.
type Decision struct {
	Limits plan.Limits
	Result *ratelimit.Result
}

// Governor performs per-request admission: one rate check against the
// tenant's plan ceiling, then deadline and budget binding.
type Governor struct {
	plans    *plan.Registry
	limiters *LimiterRegistry
	logger   *slog.Logger
}

// Option configures a Governor.
type Option func(*Governor)

// WithLogger sets the logger used for store failures. Defaults to a
// discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Governor) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Governor backed by the given plan registry and rate limit
// store. Limiters for all known tiers are built up front.
func New(plans *plan.Registry, store ratelimit.Store, opts ...Option) (*Governor, error) {
	limiters, err := NewLimiterRegistry(plans, store)
	if err != nil {
		return nil, err
	}

	g := &Governor{
		plans:    plans,
		limiters: limiters,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Check runs the admission rate check for the given resolution. The rate
// key is the tenant id when one resolved, otherwise fallbackKey (typically
// the client address). Returns ErrRateLimited when the tier's ceiling is
// exhausted for the current window; the Decision is valid either way.
func (g *Governor) Check(ctx context.Context, res *tenant.Resolution, fallbackKey string) (Decision, error) {
	tier := res.PlanTier()
	limits := g.plans.ForTier(tier)

	key := fallbackKey
	if id, ok := res.TenantID(); ok {
		key = "tenant:" + id.String()
	} else if key == "" {
		key = ratelimit.UnattributableKey
	}

	fw, err := g.limiters.ForTier(tier)
	if err != nil {
		return Decision{Limits: limits}, fmt.Errorf("governor: limiter for tier %q: %w", tier, err)
	}

	result, err := fw.Allow(ctx, key)
	if err != nil {
		return Decision{Limits: limits}, fmt.Errorf("governor: rate check: %w", err)
	}

	d := Decision{Limits: limits, Result: result}
	if !result.Allowed {
		return d, ErrRateLimited
	}
	return d, nil
}

// CheckAndBind runs Check and, when admitted, returns a context armed with
// the plan's API timeout as its deadline and carrying the plan limits for
// downstream budget lookups. The caller must call cancel when the request
// finishes.
func (g *Governor) CheckAndBind(ctx context.Context, res *tenant.Resolution, fallbackKey string) (context.Context, context.CancelFunc, Decision, error) {
	d, err := g.Check(ctx, res, fallbackKey)
	if err != nil {
		return ctx, func() {}, d, err
	}
	bound, cancel := Bind(ctx, d.Limits)
	return bound, cancel, d, nil
}

// Bind returns a child context with its deadline armed to the plan's API
// timeout and the limits attached for QueryTimeout and WorkerBudget
// lookups.
func Bind(ctx context.Context, limits plan.Limits) (context.Context, context.CancelFunc) {
	ctx = withLimits(ctx, limits)
	return context.WithTimeout(ctx, limits.APITimeout)
}
