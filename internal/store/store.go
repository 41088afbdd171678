package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors returned by store operations. Handlers map these to
// HTTP statuses with errors.Is.
var (
	// ErrNotFound: a referenced row does not exist (or, for
	// tenant-scoped lookups, does not exist under that institution).
	ErrNotFound = errors.New("resource not found")

	// ErrTenantMismatch: a cross-table reference resolves to a row
	// owned by a different institution. Always fatal to the write.
	ErrTenantMismatch = errors.New("reference crosses institution boundary")

	// ErrDeleteBlocked: restrict-policy violation, dependents exist.
	ErrDeleteBlocked = errors.New("delete blocked by dependent rows")

	// ErrConflict: a named uniqueness rule fired.
	ErrConflict = errors.New("uniqueness constraint violated")

	// ErrValidation: malformed or missing required input.
	ErrValidation = errors.New("invalid input")
)

// Store is the data access layer. All persistence goes through here,
// and every mutating operation that involves a cross-table reference or
// a cascade runs inside a single transaction so the validation and the
// write observe one consistent snapshot.
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open gorm connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for health checks
func (s *Store) DB() *gorm.DB {
	return s.db
}

// conflict wraps ErrConflict with the name of the uniqueness rule that
// fired, so callers can tell which rule rejected the write.
func conflict(rule string) error {
	return fmt.Errorf("%w: %s", ErrConflict, rule)
}
