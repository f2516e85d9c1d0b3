package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// uniqueViolation is the SQLSTATE Postgres reports for duplicate keys.
const uniqueViolation = "23505"

// Postgres is the dialect for PostgreSQL through pgx's database/sql driver.
var Postgres Dialect = postgresDialect{}

type postgresDialect struct{}

// OpenPostgres opens a PostgreSQL database from a connection URL.
func OpenPostgres(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

func (postgresDialect) Name() string { return DriverPostgres }

func (postgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS inventory (
		    item_id             SERIAL PRIMARY KEY,
		    name                TEXT NOT NULL,
		    quantity            DOUBLE PRECISION NOT NULL DEFAULT 0,
		    unit                TEXT NOT NULL DEFAULT '',
		    item_type           TEXT,
		    date_added          TEXT,
		    status_or_condition TEXT,
		    notes               TEXT,
		    price_per_unit      DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_date_added ON inventory(date_added)`,
	}
}

// Rebind numbers ? placeholders as $1, $2, ...
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (postgresDialect) Contains(column string) string {
	return "strpos(" + column + ", ?) > 0"
}

func (d postgresDialect) Insert(ctx context.Context, q Querier, id Identity, columns []string, args []any) (int64, error) {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		id.Table, strings.Join(columns, ", "), placeholders(len(columns)), id.Column)

	var next int64
	if err := q.QueryRowContext(ctx, d.Rebind(query), args...).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (postgresDialect) IsIdentityCollision(err error, id Identity) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == id.Table+"_pkey"
}

func (d postgresDialect) ResetIdentity(ctx context.Context, q Querier, id Identity, next int64) error {
	_, err := q.ExecContext(ctx,
		d.Rebind(`SELECT setval(pg_get_serial_sequence(?, ?), ?, false)`),
		id.Table, id.Column, next,
	)
	if err != nil {
		return fmt.Errorf("resetting identity sequence for %s: %w", id.Table, err)
	}
	return nil
}
