package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pagedeck/pagedeck/pkg/plan"
)

// Status is a tenant's lifecycle state.
type Status string

const (
	// StatusActive tenants serve traffic normally.
	StatusActive Status = "active"
	// StatusSuspended tenants are blocked from serving traffic.
	StatusSuspended Status = "suspended"
	// StatusPending tenants are provisioned but not yet activated.
	StatusPending Status = "pending"
)

// Tenant is the identity record for one customer organization.
// It is immutable for the lifetime of a request; mutation happens only
// through tenant-administration flows outside this core.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"` // subdomain-equivalent resolution key
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Plan      plan.Tier `json:"plan"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the tenant may serve traffic.
func (t *Tenant) Active() bool {
	return t != nil && t.Status == StatusActive
}

// Directory looks up tenant records by their stable id or resolution key.
// Implementations are backed by an external data store.
type Directory interface {
	// ByID retrieves a tenant by its stable identifier.
	// Returns ErrTenantNotFound if no tenant matches.
	ByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// ByKey retrieves a tenant by its resolution key.
	// Returns ErrTenantNotFound if no tenant matches.
	ByKey(ctx context.Context, key string) (*Tenant, error)
}
