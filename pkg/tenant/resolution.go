package tenant

import (
	"github.com/google/uuid"

	"github.com/pagedeck/pagedeck/pkg/plan"
	"github.com/pagedeck/pagedeck/pkg/region"
	"github.com/pagedeck/pagedeck/pkg/settings"
)

// Mode classifies the outcome of resolving a request.
type Mode string

const (
	// ModeTenant means the request is bound to exactly one tenant.
	ModeTenant Mode = "tenant"

	// ModeMarketing means the request hit the platform's own domain with no
	// tenant candidate at all. This is a legitimate first-class outcome,
	// distinct from a failed lookup: the marketing site is served without
	// any tenant context.
	ModeMarketing Mode = "marketing"
)

// Resolution is the per-request product of tenant resolution.
// It is created when the request enters and discarded when it completes;
// it is never persisted.
type Resolution struct {
	Mode   Mode
	Tenant *Tenant

	// Conn is the shared region-scoped data-store handle for the tenant's
	// region. Nil in marketing mode or when no region cache is configured.
	Conn region.Handle

	// Settings holds tenant-scoped settings. Nil when the settings lookup
	// failed or none are configured; readers must tolerate nil.
	Settings settings.Values
}

// TenantID returns the bound tenant's id, if any.
func (r *Resolution) TenantID() (uuid.UUID, bool) {
	if r == nil || r.Tenant == nil {
		return uuid.UUID{}, false
	}
	return r.Tenant.ID, true
}

// PlanTier returns the bound tenant's plan tier.
// Marketing-mode requests are governed by free-tier limits.
func (r *Resolution) PlanTier() plan.Tier {
	if r == nil || r.Tenant == nil {
		return plan.TierFree
	}
	return r.Tenant.Plan
}
