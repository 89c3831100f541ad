package tenant

import (
	"net/http"
	"strings"
)

// Middleware resolves the tenant for every request and stores the
// Resolution in the request context. Marketing-mode requests continue with
// a tenant-less resolution; resolution failures are terminal and handled
// by the error handler.
func Middleware(resolver *Resolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			res, err := resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			ctx := WithResolution(r.Context(), res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant ensures the request is bound to a tenant, rejecting
// marketing-mode and unresolved requests. Protects routes that cannot be
// served without tenant context.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := FromContext(r.Context())
			if !ok || res == nil || res.Tenant == nil {
				errorHandler(w, r, ErrNoResolutionInContext)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
