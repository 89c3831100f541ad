// Package pg connects the service to its control-plane PostgreSQL database.
//
// Connect opens a pgx/v5 pool from environment-sourced Config, retrying with
// a growing back-off until the database answers. Migrate applies goose
// migrations against the same pool before the service starts serving, and
// Healthcheck produces a readiness probe for the HTTP health endpoint.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//
// The error helpers (IsNotFound, IsDuplicateKey, IsForeignKeyViolation)
// classify pgx and SQLSTATE errors for query call sites.
package pg
