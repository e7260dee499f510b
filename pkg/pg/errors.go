package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrConnect           = errors.New("pg: failed to connect")
	ErrParseConfig       = errors.New("pg: failed to parse connection string")
	ErrHealthcheckFailed = errors.New("pg: healthcheck failed")
	ErrMigrate           = errors.New("pg: failed to apply migrations")
)

// IsUniqueViolation reports whether err is a unique constraint violation
// (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
