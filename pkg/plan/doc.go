// Package plan defines subscription tiers and the static resource limits
// attached to each tier.
//
// Every tenant carries a Tier, and every governed request is budgeted
// according to that tier's Limits: how many requests fit in a rate window,
// and how long the request, its data-store queries, and its plugin calls
// may run.
//
// Limits tables are static configuration. They can be supplied in code via
// NewInMemSource, or loaded from a YAML file via NewYAMLSource. The Registry
// guarantees that an unknown or missing tier always resolves to the free
// tier's limits, never to an unbounded default.
//
//	registry, err := plan.NewRegistry(plan.NewInMemSource(plan.DefaultLimits()))
//	limits := registry.ForTier(plan.TierPro)
package plan
