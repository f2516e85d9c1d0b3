package db

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates all tables and indexes if they don't already exist.
// Statements run in order and each is idempotent.
func EnsureSchema(db *sql.DB, d Dialect) error {
	for i, stmt := range d.Schema() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema (statement %d): %w", i+1, err)
		}
	}
	return nil
}
