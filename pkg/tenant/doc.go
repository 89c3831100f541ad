// Package tenant binds inbound requests to tenants on a multi-tenant
// content platform.
//
// Every request must resolve to exactly one tenant before any business
// logic runs, with two exceptions: paths explicitly skipped by the
// middleware, and requests to the platform's own domain, which resolve to
// a first-class marketing mode with no tenant at all.
//
// # Resolution
//
// The Resolver tries strategies in order, first match wins:
//
//  1. An explicit credential header (default "X-Tenant-ID"). UUID-shaped
//     values resolve directly by id, bypassing host parsing entirely;
//     other values are treated as resolution keys.
//  2. A candidate key derived from the host name: with more than two
//     labels the leftmost label is the candidate ("acme" from
//     "acme.pagedeck.app"); with exactly two labels the leftmost is still
//     a candidate when the suffix is a known development domain
//     ("acme.localhost").
//
// A candidate that matches no record fails closed with ErrTenantNotFound.
// No candidate at all yields ModeMarketing.
//
// # Request context
//
// A successful resolution carries the tenant record, the shared
// region-scoped data-store handle (created lazily, one per region), and
// best-effort tenant settings. It is stored in the request context:
//
//	mw := tenant.Middleware(resolver, tenant.WithSkipPaths("/health", "/auth"))
//	router.Use(mw)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		res, ok := tenant.FromContext(r.Context())
//		...
//	}
//
// # Caching
//
// Directory lookups can be fronted by a TTL + LRU cache via WithCache to
// keep the resolver off the data store on the hot path.
package tenant
