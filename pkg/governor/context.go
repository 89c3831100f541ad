package governor

import (
	"context"
	"time"

	"github.com/pagedeck/pagedeck/pkg/plan"
)

type contextKey struct{}

func withLimits(ctx context.Context, limits plan.Limits) context.Context {
	return context.WithValue(ctx, contextKey{}, limits)
}

// LimitsFromContext returns the plan limits bound to a governed request.
func LimitsFromContext(ctx context.Context) (plan.Limits, bool) {
	limits, ok := ctx.Value(contextKey{}).(plan.Limits)
	return limits, ok
}

// QueryTimeout returns the per-query budget bound to the request, falling
// back to def when the request is not governed.
func QueryTimeout(ctx context.Context, def time.Duration) time.Duration {
	if limits, ok := LimitsFromContext(ctx); ok {
		return limits.QueryTimeout
	}
	return def
}

// WorkerBudget returns the per-plugin-call budget bound to the request,
// falling back to def when the request is not governed.
func WorkerBudget(ctx context.Context, def time.Duration) time.Duration {
	if limits, ok := LimitsFromContext(ctx); ok {
		return limits.WorkerTaskTimeout
	}
	return def
}

// QueryContext derives a context for a single data-store call, bounded by
// the request's query budget. The resulting deadline never extends past the
// request deadline.
func QueryContext(ctx context.Context, def time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, QueryTimeout(ctx, def))
}
