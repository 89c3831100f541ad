package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrFailedToParseConnString is returned when the connection string cannot be parsed.
	ErrFailedToParseConnString = errors.New("pg: failed to parse connection string")
	// ErrNotReady is returned when the database cannot be reached within the retry budget.
	ErrNotReady = errors.New("pg: database is not ready")
	// ErrHealthcheckFailed is returned when the connection ping fails.
	ErrHealthcheckFailed = errors.New("pg: healthcheck failed")
	// ErrMigrationsFailed is returned when schema migrations cannot be applied.
	ErrMigrationsFailed = errors.New("pg: failed to apply migrations")
	// ErrMigrationsDirNotFound is returned when the migrations directory does not exist.
	ErrMigrationsDirNotFound = errors.New("pg: migrations directory not found")
	// ErrMigrationsPathRequired is returned when Migrate is called without a migrations path.
	ErrMigrationsPathRequired = errors.New("pg: migrations path is required")
)

// IsNotFound reports whether err is a pgx empty-result error.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKey reports whether err is a unique constraint violation (SQLSTATE 23505).
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a referential integrity violation (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
