// Package governor enforces fairness across tenants and bounds worst-case
// request latency.
//
// Every governed request passes one rate check keyed by its tenant (or by
// client address when no tenant resolved) against the ceiling of the
// tenant's plan tier, and then runs under a deadline equal to the plan's
// API timeout. The plan's query and worker budgets travel in the request
// context for downstream consumers: data-store calls read the query budget,
// plugin calls read the worker budget.
//
// Rate-limit rejections and timeouts are terminal for the request; the
// governor never retries on the caller's behalf.
//
//	gov, _ := governor.New(plans, store)
//	router.Use(tenant.Middleware(resolver))
//	router.Use(gov.Middleware())
package governor
