package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors shared by the stores. Handlers map these onto HTTP
// statuses (409 for duplicates, 422 for bad parent references).
var (
	// ErrDuplicate is returned when an insert or update violates a
	// uniqueness constraint (slugs, names per locale, hostnames).
	ErrDuplicate = errors.New("duplicate value")

	// ErrParentNotFound is returned when a referenced parent row does not exist.
	ErrParentNotFound = errors.New("parent not found")

	// ErrInvalidParent is returned when the page-tree nesting rules reject
	// the requested parent/child combination.
	ErrInvalidParent = errors.New("invalid parent for page type")
)

// uniqueViolationCode is the PostgreSQL error code for unique_violation.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
