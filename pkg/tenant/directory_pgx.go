package tenant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pagedeck/pagedeck/pkg/pg"
	"github.com/pagedeck/pagedeck/pkg/plan"
)

// RowQuerier is the subset of a pgx pool the directory needs.
// Satisfied by *pgxpool.Pool and pgx.Tx.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGXDirectory reads tenant records from the control-plane database.
type PGXDirectory struct {
	db RowQuerier
}

// NewPGXDirectory creates a directory over the given control-plane pool.
func NewPGXDirectory(db RowQuerier) (*PGXDirectory, error) {
	if db == nil {
		return nil, ErrDirectoryRequired
	}
	return &PGXDirectory{db: db}, nil
}

const tenantColumns = "id, key, name, status, plan, region, created_at"

// ByID retrieves a tenant by its stable identifier.
func (d *PGXDirectory) ByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	row := d.db.QueryRow(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE id = $1", id)
	return scanTenant(row)
}

// ByKey retrieves a tenant by its resolution key.
func (d *PGXDirectory) ByKey(ctx context.Context, key string) (*Tenant, error) {
	row := d.db.QueryRow(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE key = $1", key)
	return scanTenant(row)
}

func scanTenant(row pgx.Row) (*Tenant, error) {
	var (
		t            Tenant
		status, tier string
	)
	err := row.Scan(&t.ID, &t.Key, &t.Name, &status, &tier, &t.Region, &t.CreatedAt)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("tenant: query tenant record: %w", err)
	}

	t.Status = Status(strings.ToLower(status))
	t.Plan = plan.ParseTier(tier)
	return &t, nil
}
