package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithResolution adds a resolution to the context.
func WithResolution(ctx context.Context, res *Resolution) context.Context {
	return context.WithValue(ctx, contextKey{}, res)
}

// FromContext retrieves the resolution from the context.
// Returns nil, false if no resolution is present.
func FromContext(ctx context.Context) (*Resolution, bool) {
	res, ok := ctx.Value(contextKey{}).(*Resolution)
	return res, ok
}

// MustFromContext retrieves the resolution from the context.
// Panics if absent. Use only in handlers that cannot run without one.
func MustFromContext(ctx context.Context) *Resolution {
	res, ok := FromContext(ctx)
	if !ok || res == nil {
		panic("tenant: no resolution in context")
	}
	return res
}

// IDFromContext retrieves just the bound tenant's id from the context.
// Returns zero UUID and false for marketing-mode or unresolved requests.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	res, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return res.TenantID()
}

// LoggerExtractor returns a logger ContextExtractor that adds the tenant id
// to every log record emitted within a tenant-bound request.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
