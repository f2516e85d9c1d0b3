package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite is the dialect for modernc.org/sqlite databases.
//
// Identities come from the id_generators table rather than from rowid
// allocation, so that a row inserted with an explicit item_id does not move
// the generator. That keeps the store's behaviour in line with a Postgres
// sequence.
var SQLite Dialect = sqliteDialect{}

type sqliteDialect struct{}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS inventory (
    item_id             INTEGER PRIMARY KEY,
    name                TEXT NOT NULL,
    quantity            REAL NOT NULL DEFAULT 0,
    unit                TEXT NOT NULL DEFAULT '',
    item_type           TEXT,
    date_added          TEXT,
    status_or_condition TEXT,
    notes               TEXT,
    price_per_unit      REAL
);

CREATE INDEX IF NOT EXISTS idx_inventory_date_added
    ON inventory(date_added);

CREATE TABLE IF NOT EXISTS id_generators (
    name       TEXT PRIMARY KEY,
    next_value INTEGER NOT NULL CHECK (next_value > 0)
);
`

func (sqliteDialect) Name() string { return DriverSQLite }

func (sqliteDialect) Schema() []string {
	return []string{
		sqliteSchema,
		// Databases created before id_generators existed start after their highest id.
		`INSERT OR IGNORE INTO id_generators (name, next_value)
		 SELECT 'inventory', COALESCE(MAX(item_id), 0) + 1 FROM inventory`,
	}
}

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) Contains(column string) string {
	return "instr(" + column + ", ?) > 0"
}

func (sqliteDialect) Insert(ctx context.Context, q Querier, id Identity, columns []string, args []any) (int64, error) {
	var next int64
	err := q.QueryRowContext(ctx,
		`UPDATE id_generators SET next_value = next_value + 1 WHERE name = ? RETURNING next_value - 1`,
		id.Table,
	).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no identity generator for %s", id.Table)
	}
	if err != nil {
		return 0, fmt.Errorf("advancing identity generator: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, %s)",
		id.Table, id.Column, strings.Join(columns, ", "), placeholders(len(columns)))
	if _, err := q.ExecContext(ctx, query, append([]any{next}, args...)...); err != nil {
		return 0, err
	}
	return next, nil
}

func (sqliteDialect) IsIdentityCollision(err error, id Identity) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return strings.Contains(se.Error(), id.Table+"."+id.Column)
	}
	return false
}

func (sqliteDialect) ResetIdentity(ctx context.Context, q Querier, id Identity, next int64) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO id_generators (name, next_value) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET next_value = excluded.next_value`,
		id.Table, next,
	)
	if err != nil {
		return fmt.Errorf("resetting identity generator for %s: %w", id.Table, err)
	}
	return nil
}
