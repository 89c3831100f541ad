// Package region manages region-scoped data-store connection handles.
//
// Tenants are pinned to a region, and all of a request's data-store work
// goes through the handle for that region. Handles are expensive to build,
// so the Cache creates one handle per region on first use and reuses it for
// every later request. Construction is idempotent: concurrent first requests
// for the same uncached region produce exactly one handle.
//
//	factory := region.NewPGXFactory(region.PGXConfig{DSNs: dsns})
//	cache := region.NewCache(factory)
//	handle, err := cache.Get(ctx, tenant.Region)
package region
