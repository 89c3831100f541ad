package region

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXConfig configures the PostgreSQL factory.
type PGXConfig struct {
	// DSNs maps a region name to its connection string.
	DSNs map[string]string `env:"REGION_DSNS"`

	MaxConns          int32         `env:"REGION_DB_MAX_CONNS" envDefault:"10"`
	MinConns          int32         `env:"REGION_DB_MIN_CONNS" envDefault:"1"`
	HealthCheckPeriod time.Duration `env:"REGION_DB_HEALTHCHECK_PERIOD" envDefault:"1m"`
	RetryAttempts     int           `env:"REGION_DB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval     time.Duration `env:"REGION_DB_RETRY_INTERVAL" envDefault:"5s"`
}

// pgxFactory opens one pgx pool per region.
type pgxFactory struct {
	cfg PGXConfig
}

// NewPGXFactory creates a Factory backed by pgx connection pools.
func NewPGXFactory(cfg PGXConfig) Factory {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	return &pgxFactory{cfg: cfg}
}

// Open dials the region's database with linear backoff between attempts,
// following the same retry discipline as service startup: transient network
// failures should not take the region offline permanently.
func (f *pgxFactory) Open(ctx context.Context, region string) (Handle, error) {
	dsn, ok := f.cfg.DSNs[region]
	if !ok {
		return nil, ErrUnknownRegion
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}
	poolCfg.MaxConns = f.cfg.MaxConns
	poolCfg.MinConns = f.cfg.MinConns
	poolCfg.HealthCheckPeriod = f.cfg.HealthCheckPeriod

	var lastErr error
	for i := range f.cfg.RetryAttempts {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(i+1) * f.cfg.RetryInterval)
			continue
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			lastErr = err
			time.Sleep(time.Duration(i+1) * f.cfg.RetryInterval)
			continue
		}

		return &pgxHandle{pool: pool}, nil
	}

	return nil, errors.Join(ErrConnectFailed, lastErr)
}

// pgxHandle wraps a pgx pool as a region Handle.
type pgxHandle struct {
	pool *pgxpool.Pool
}

// Pool exposes the underlying pgx pool for query execution.
func (h *pgxHandle) Pool() *pgxpool.Pool { return h.pool }

func (h *pgxHandle) Ping(ctx context.Context) error { return h.pool.Ping(ctx) }

func (h *pgxHandle) Close() { h.pool.Close() }
