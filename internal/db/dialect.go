package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the subset of *sql.DB, *sql.Conn and *sql.Tx the dialects need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Identity names a table and its store-generated key column.
type Identity struct {
	Table  string
	Column string
}

// Dialect hides the differences between the supported relational stores.
// Queries passed to a Dialect use ? placeholders; Rebind converts them.
type Dialect interface {
	// Name returns the driver name the dialect belongs to.
	Name() string

	// Schema returns the idempotent statements that create the tables.
	Schema() []string

	// Rebind rewrites ? placeholders into the store's native form.
	Rebind(query string) string

	// Contains returns a case-sensitive "column contains ?" predicate.
	Contains(column string) string

	// Insert inserts one row, letting the store generate the identity, and
	// returns the generated value.
	Insert(ctx context.Context, q Querier, id Identity, columns []string, args []any) (int64, error)

	// IsIdentityCollision reports whether err is a uniqueness violation on
	// the identity column.
	IsIdentityCollision(err error, id Identity) bool

	// ResetIdentity makes next the value the identity generator hands out next.
	ResetIdentity(ctx context.Context, q Querier, id Identity, next int64) error
}

// Drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite:
		return SQLite, nil
	case DriverPostgres:
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Connect opens the store for driver. source is a file path for SQLite and a
// connection URL for Postgres.
func Connect(driver, source string) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, nil, err
	}

	var database *sql.DB
	switch driver {
	case DriverPostgres:
		database, err = OpenPostgres(source)
	default:
		database, err = Open(source)
	}
	if err != nil {
		return nil, nil, err
	}
	return database, dialect, nil
}

// placeholders returns n comma-separated ? placeholders.
func placeholders(n int) string {
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '?')
	}
	return string(b)
}
