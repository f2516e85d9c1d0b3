package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/kmetija/internal/model"
)

// variantColumns holds the column values that depend on the item's variant.
type variantColumns struct {
	state any // status_or_condition
	price any // price_per_unit
}

func variantColumnsOf(item model.Item) variantColumns {
	return model.Match(item,
		func(h *model.HarvestLot) variantColumns {
			v := variantColumns{state: nullString(h.Status)}
			if h.PricePerUnit != nil {
				v.price = *h.PricePerUnit
			}
			return v
		},
		func(e *model.EquipmentItem) variantColumns {
			return variantColumns{state: nullString(e.Condition)}
		},
	)
}

// insertArgs returns the values for insertColumns.
func insertArgs(item model.Item) []any {
	b := item.Common()
	v := variantColumnsOf(item)
	return []any{
		b.Name,
		b.Quantity,
		b.Unit,
		string(item.ItemType()),
		nullString(model.FormatDate(b.DateAdded)),
		v.state,
		nullString(b.Notes),
		v.price,
	}
}

// variantPredicate matches rows that read back as the same variant as item.
// Rows with a missing or unknown item_type read back as harvest lots.
func variantPredicate(item model.Item) string {
	return model.Match(item,
		func(*model.HarvestLot) string {
			return fmt.Sprintf("(item_type IS NULL OR item_type <> '%s')", model.TypeEquipment)
		},
		func(*model.EquipmentItem) string {
			return fmt.Sprintf("item_type = '%s'", model.TypeEquipment)
		},
	)
}

// storedType maps an item_type column value to a variant tag.
func storedType(s sql.NullString) model.ItemType {
	if s.Valid && model.ItemType(s.String) == model.TypeEquipment {
		return model.TypeEquipment
	}
	return model.TypeHarvest
}

// nullString maps "" to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scanner interface {
	Scan(dest ...any) error
}

// scanItem reads one row in selectColumns order and rebuilds the item.
// Numeric columns are scanned as text so that a bad value can be reported
// against the row that holds it.
func scanItem(sc scanner) (model.Item, error) {
	var (
		id                                  int64
		name                                string
		quantity, unit, itemType, dateAdded sql.NullString
		state, notes, price                 sql.NullString
	)
	if err := sc.Scan(&id, &name, &quantity, &unit, &itemType, &dateAdded, &state, &notes, &price); err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	if !quantity.Valid {
		return nil, &MalformedRowError{ID: id, Column: "quantity", Err: fmt.Errorf("missing value")}
	}
	qty, err := parseNumber(quantity.String)
	if err != nil {
		return nil, &MalformedRowError{ID: id, Column: "quantity", Err: err}
	}

	base := model.Base{
		ID:        id,
		Name:      name,
		Quantity:  qty,
		Unit:      unit.String,
		DateAdded: storedDate(id, dateAdded),
		Notes:     notes.String,
	}

	switch storedType(itemType) {
	case model.TypeEquipment:
		e := &model.EquipmentItem{Base: base, Condition: state.String}
		if e.Condition == "" {
			e.Condition = model.DefaultCondition
		}
		return e, nil
	default:
		h := &model.HarvestLot{Base: base, Status: state.String}
		if h.Status == "" {
			h.Status = model.DefaultStatus
		}
		if price.Valid {
			p, err := parseNumber(price.String)
			if err != nil {
				return nil, &MalformedRowError{ID: id, Column: "price_per_unit", Err: err}
			}
			h.PricePerUnit = &p
		}
		return h, nil
	}
}

// parseNumber parses a stored real number.
func parseNumber(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// storedDate parses date_added, accepting the canonical and the legacy
// layout. Anything else becomes today's date.
func storedDate(id int64, s sql.NullString) time.Time {
	for _, layout := range []string{model.DateLayout, model.LegacyDateLayout} {
		if t, err := time.Parse(layout, strings.TrimSpace(s.String)); err == nil {
			return t
		}
	}
	slog.Warn("unreadable date_added, using today", "item_id", id, "value", s.String)
	return model.Today()
}
