package csvcodec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/kmetija/internal/model"
)

// minFields is the number of columns a line needs before it is considered.
const minFields = 6

// Column positions.
const (
	colName = iota + 1
	colQuantity
	colUnit
	colDate
	colNotes
	colStatus
	colPrice
)

// Defaults for columns a line leaves out.
const (
	DefaultUnit   = "kg"
	DefaultStatus = model.StatusFresh
)

var errOutOfRange = errors.New("number out of range")

// LineError records a line that could not be parsed.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// Result is what Decode produced.
type Result struct {
	// Items are the decoded lots, ids cleared.
	Items []model.Item
	// Skipped are the lines whose fields could not be parsed.
	Skipped []LineError
	// Dropped counts lines ignored for having too few fields, no name or no
	// positive quantity.
	Dropped int
}

// Decode reads CSV text and returns one harvest lot per usable line.
//
// The first non-blank line is a header and is skipped, as are blank lines.
// Lines with fewer than six fields, an empty name or a quantity that is not
// positive are dropped. A line whose quantity cannot be parsed is recorded in
// Result.Skipped and decoding carries on. An unreadable price leaves the lot
// without one. Lines may be of any length. Only read errors are returned.
//
// Every line decodes to a *model.HarvestLot, including lines that Encode
// wrote for equipment.
func Decode(r io.Reader) (*Result, error) {
	res := &Result{}
	today := model.Today()
	br := bufio.NewReader(r)

	seenHeader := false
	lineNo := 0
	for {
		text, err := br.ReadString('\n')
		if text != "" {
			lineNo++
			text = strings.TrimRight(text, "\r\n")
			switch {
			case strings.TrimSpace(text) == "":
			case !seenHeader:
				seenHeader = true
			default:
				res.add(lineNo, text, today)
			}
		}
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("reading csv at line %d: %w", lineNo+1, err)
		}
	}
}

func (res *Result) add(lineNo int, text string, today time.Time) {
	lot, err := decodeLine(text, today)
	switch {
	case err != nil:
		res.Skipped = append(res.Skipped, LineError{Line: lineNo, Text: text, Err: err})
	case lot == nil:
		res.Dropped++
	default:
		res.Items = append(res.Items, lot)
	}
}

// decodeLine returns nil, nil for a line that is dropped.
func decodeLine(text string, today time.Time) (*model.HarvestLot, error) {
	fields := SplitLine(text)
	if len(fields) < minFields {
		return nil, nil
	}

	field := func(i int, def string) string {
		if i < len(fields) && fields[i] != "" {
			return fields[i]
		}
		return def
	}

	var quantity float64
	if s := field(colQuantity, ""); s != "" {
		q, err := parseNumber(s)
		if err != nil {
			return nil, fmt.Errorf("quantity %q: %w", s, err)
		}
		quantity = q
	}

	// Encode writes 0.00 for "no price".
	var price *float64
	if p, err := parseNumber(field(colPrice, "")); err == nil && p != 0 {
		price = &p
	}

	dateAdded := today
	if d, err := model.ParseDate(field(colDate, "")); err == nil {
		dateAdded = d
	}

	name := field(colName, "")
	if name == "" || quantity <= 0 {
		return nil, nil
	}

	return &model.HarvestLot{
		Base: model.Base{
			Name:      name,
			Quantity:  quantity,
			Unit:      field(colUnit, DefaultUnit),
			DateAdded: dateAdded,
			Notes:     field(colNotes, ""),
		},
		Status:       field(colStatus, DefaultStatus),
		PricePerUnit: price,
	}, nil
}

// SplitLine splits a line on commas that are not inside double quotes.
// Quote characters toggle the quoted state and are not kept; there is no
// escape for a quote inside a quoted field. Fields are trimmed.
func SplitLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// parseNumber parses a decimal number that fits a float64.
func parseNumber(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, errOutOfRange
	}
	return f, nil
}
