// Package csvcodec converts inventory items to and from the flat CSV layout
// used for import and export.
//
// The layout is positional:
//
//	ID,Name,Quantity,Unit,Date_Added,Notes,Status,Price_Per_Unit
//
// Encode does not quote fields, so a comma inside a name or note shifts the
// columns that follow it. Decode understands double-quoted fields.
package csvcodec

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/kmetija/internal/model"
)

// Header is the first line written by Write. Decode skips whatever the first
// line is.
const Header = "ID,Name,Quantity,Unit,Date_Added,Notes,Status,Price_Per_Unit"

// Encode returns item as one CSV line without a trailing newline. Harvest
// lots get an eighth price column (0.00 when no price is set); equipment
// items have seven columns.
func Encode(item model.Item) string {
	b := item.Common()
	fields := []string{
		strconv.FormatInt(b.ID, 10),
		b.Name,
		fixed2(b.Quantity),
		b.Unit,
		model.FormatDate(b.DateAdded),
		b.Notes,
		model.StateOf(item),
	}

	fields = model.Match(item,
		func(h *model.HarvestLot) []string {
			price := 0.0
			if h.PricePerUnit != nil {
				price = *h.PricePerUnit
			}
			return append(fields, fixed2(price))
		},
		func(*model.EquipmentItem) []string { return fields },
	)

	return strings.Join(fields, ",")
}

// Write writes the header followed by one encoded line per item.
func Write(w io.Writer, items []model.Item) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, item := range items {
		if _, err := bw.WriteString(Encode(item) + "\n"); err != nil {
			return fmt.Errorf("writing item %d: %w", item.Common().ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// fixed2 formats f with exactly two decimals. Infinities and NaN, which
// Validate rejects, are written as strconv formats them.
func fixed2(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return decimal.NewFromFloat(f).StringFixed(2)
}
