package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/kmetija/internal/db"
	"github.com/erazemk/kmetija/internal/model"
)

// itemIdentity is the inventory table's generated key.
var itemIdentity = db.Identity{Table: "inventory", Column: "item_id"}

const selectColumns = `item_id, name, quantity, unit, item_type, date_added, status_or_condition, notes, price_per_unit`

// dateSortKey rewrites legacy MM/dd/yyyy dates as yyyy-MM-dd so that both
// layouts order together. The expression is valid in SQLite and Postgres.
const dateSortKey = `CASE WHEN date_added LIKE '__/__/____'
	THEN substr(date_added, 7, 4) || '-' || substr(date_added, 1, 2) || '-' || substr(date_added, 4, 2)
	ELSE date_added END`

// insertColumns are written by Create, in the order insertArgs produces them.
var insertColumns = []string{
	"name", "quantity", "unit", "item_type", "date_added", "status_or_condition", "notes", "price_per_unit",
}

// Inventory reads and writes inventory items. Every method acquires its own
// connection and releases it before returning.
type Inventory struct {
	db      *sql.DB
	dialect db.Dialect
}

// NewInventory returns an inventory store backed by database.
func NewInventory(database *sql.DB, dialect db.Dialect) *Inventory {
	return &Inventory{db: database, dialect: dialect}
}

func (s *Inventory) conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	return conn, nil
}

// Create inserts item and stores the generated id in item.Common().ID.
//
// If the insert collides with an existing identity (rows added without going
// through the generator), the generator is moved past the highest id and the
// insert is tried exactly once more.
func (s *Inventory) Create(ctx context.Context, item model.Item) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	defer conn.Close()

	args := insertArgs(item)
	id, err := s.dialect.Insert(ctx, conn, itemIdentity, insertColumns, args)
	if err != nil && s.dialect.IsIdentityCollision(err, itemIdentity) {
		id, err = s.repairAndRetry(ctx, conn, args, err)
	}
	if err != nil {
		return fmt.Errorf("creating item %q: %w", item.Common().Name, err)
	}

	item.Common().ID = id
	return nil
}

// repairAndRetry resets the identity generator to one past the current
// maximum and repeats the insert once.
func (s *Inventory) repairAndRetry(ctx context.Context, conn *sql.Conn, args []any, cause error) (int64, error) {
	var maxID int64
	err := conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(item_id), 0) FROM inventory`).Scan(&maxID)
	if err != nil {
		return 0, &IdentityRepairError{Cause: cause, Err: fmt.Errorf("reading highest item id: %w", err)}
	}

	slog.Warn("identity collision on insert, resetting generator",
		"table", itemIdentity.Table, "next_id", maxID+1, "error", cause)

	if err := s.dialect.ResetIdentity(ctx, conn, itemIdentity, maxID+1); err != nil {
		return 0, &IdentityRepairError{Cause: cause, Err: err}
	}

	id, err := s.dialect.Insert(ctx, conn, itemIdentity, insertColumns, args)
	if err != nil {
		return 0, &IdentityRepairError{Cause: cause, Err: fmt.Errorf("retrying insert: %w", err)}
	}

	slog.Info("identity generator repaired", "table", itemIdentity.Table, "item_id", id)
	return id, nil
}

// GetAll returns every item, most recently added first.
//
// Rows that cannot be reconstructed are left out of the result and reported
// together in the returned error (each a *MalformedRowError); the items that
// could be read are returned alongside it.
func (s *Inventory) GetAll(ctx context.Context) ([]model.Item, error) {
	return s.list(ctx, "listing items", "")
}

// Search returns items whose name, notes or item type contain query
// (case-sensitive), ordered like GetAll. An empty query matches every item.
func (s *Inventory) Search(ctx context.Context, query string) ([]model.Item, error) {
	where := " WHERE " + s.dialect.Contains("name") +
		" OR " + s.dialect.Contains("notes") +
		" OR " + s.dialect.Contains("item_type")
	return s.list(ctx, "searching items", where, query, query, query)
}

func (s *Inventory) list(ctx context.Context, op, where string, args ...any) ([]model.Item, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, s.dialect.Rebind(
		`SELECT `+selectColumns+` FROM inventory`+where+` ORDER BY `+dateSortKey+` DESC, item_id DESC`,
	), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []model.Item
	var malformed []error
	for rows.Next() {
		item, err := scanItem(rows)
		var rowErr *MalformedRowError
		if errors.As(err, &rowErr) {
			malformed = append(malformed, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(malformed) > 0 {
		return items, fmt.Errorf("%s: %w", op, errors.Join(malformed...))
	}
	return items, nil
}

// GetByID returns the item with the given id, or nil if there is none.
func (s *Inventory) GetByID(ctx context.Context, id int64) (model.Item, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}
	defer conn.Close()

	item, err := scanItem(conn.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT `+selectColumns+` FROM inventory WHERE item_id = ?`,
	), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}
	return item, nil
}

// Update replaces every field of the stored item except its id and type and
// returns the number of rows changed. An id that no longer exists changes
// nothing and is not an error. Passing a different variant than the stored
// one fails with ErrVariantMismatch and leaves the row untouched.
func (s *Inventory) Update(ctx context.Context, item model.Item) (int64, error) {
	b := item.Common()

	conn, err := s.conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("updating item %d: %w", b.ID, err)
	}
	defer conn.Close()

	v := variantColumnsOf(item)
	result, err := conn.ExecContext(ctx, s.dialect.Rebind(
		`UPDATE inventory
		 SET name = ?, quantity = ?, unit = ?, date_added = ?, status_or_condition = ?, notes = ?, price_per_unit = ?
		 WHERE item_id = ? AND `+variantPredicate(item),
	), b.Name, b.Quantity, b.Unit, nullString(model.FormatDate(b.DateAdded)), v.state, nullString(b.Notes), v.price, b.ID)
	if err != nil {
		return 0, fmt.Errorf("updating item %d: %w", b.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating item %d: %w", b.ID, err)
	}
	if n > 0 {
		return n, nil
	}

	// Nothing matched: the row is gone, or it is the other variant.
	var stored sql.NullString
	err = conn.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT item_type FROM inventory WHERE item_id = ?`,
	), b.ID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("updating item %d: checking stored type: %w", b.ID, err)
	}
	return 0, fmt.Errorf("updating item %d from %s to %s: %w",
		b.ID, storedType(stored), item.ItemType(), ErrVariantMismatch)
}

// Delete removes the item with the given id. Deleting a missing id is a no-op.
func (s *Inventory) Delete(ctx context.Context, id int64) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", id, err)
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM inventory WHERE item_id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", id, err)
	}
	return nil
}
