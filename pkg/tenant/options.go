package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pagedeck/pagedeck/pkg/region"
	"github.com/pagedeck/pagedeck/pkg/settings"
)

// RegionCache hands out the shared data-store handle for a region.
// Satisfied by *region.Cache.
type RegionCache interface {
	Get(ctx context.Context, region string) (region.Handle, error)
}

// SettingsStore loads tenant-scoped settings.
// Satisfied by the stores in the settings package.
type SettingsStore interface {
	Get(ctx context.Context, tenantID uuid.UUID) (settings.Values, error)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithHeader sets the credential header carrying an explicit tenant
// identifier. Defaults to "X-Tenant-ID".
func WithHeader(name string) ResolverOption {
	return func(r *Resolver) {
		if name != "" {
			r.header = name
		}
	}
}

// WithDevSuffixes sets the single-label domain suffixes treated as local
// development hosts, where "acme.localhost" resolves the "acme" key.
func WithDevSuffixes(suffixes ...string) ResolverOption {
	return func(r *Resolver) {
		r.devSuffixes = make(map[string]struct{}, len(suffixes))
		for _, s := range suffixes {
			r.devSuffixes[s] = struct{}{}
		}
	}
}

// WithRegionCache attaches a region handle cache; resolved tenants get the
// shared connection handle for their region.
func WithRegionCache(regions RegionCache) ResolverOption {
	return func(r *Resolver) {
		r.regions = regions
	}
}

// WithSettingsStore attaches a best-effort tenant settings store.
func WithSettingsStore(store SettingsStore) ResolverOption {
	return func(r *Resolver) {
		r.settings = store
	}
}

// WithCache sets the tenant record cache in front of the directory.
func WithCache(cache Cache, ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
		}
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRequireActive controls whether suspended and pending tenants are
// rejected at resolution time. Enabled by default.
func WithRequireActive(require bool) ResolverOption {
	return func(r *Resolver) {
		r.requireActive = require
	}
}

// ErrorHandler handles errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrTenantSuspended), errors.Is(err, ErrTenantPending):
		http.Error(w, "Tenant is not active", http.StatusForbidden)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "Invalid tenant identifier", http.StatusBadRequest)
	case errors.Is(err, ErrNoResolutionInContext):
		http.Error(w, "Tenant required", http.StatusNotFound)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// middlewareConfig holds middleware configuration.
type middlewareConfig struct {
	errorHandler ErrorHandler
	skipPaths    []string
}

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution,
// such as health checks and authentication endpoints.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = paths
	}
}
