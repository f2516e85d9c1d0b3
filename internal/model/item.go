package model

import (
	"errors"
	"math"
	"strconv"
	"time"
)

// ItemType tags which variant an inventory entry is.
type ItemType string

// Item types, as stored in the item_type column.
const (
	TypeHarvest   ItemType = "HARVEST"
	TypeEquipment ItemType = "EQUIPMENT"
)

// Harvest lot statuses. The set is open-ended; these are the ones the UI offers.
const (
	StatusAvailable  = "Available"
	StatusInterested = "Interested"
	StatusSoldOut    = "Sold Out"
	StatusFresh      = "Fresh"
	StatusProcessed  = "Processed"
)

// Equipment conditions.
const (
	ConditionGood        = "Good"
	ConditionFair        = "Fair"
	ConditionNeedsRepair = "Needs Repair"
)

// Defaults applied when a variant's state field is absent.
const (
	DefaultStatus    = StatusAvailable
	DefaultCondition = ConditionGood
)

// Validation errors returned by Validate.
var (
	ErrNameRequired      = errors.New("name required")
	ErrNegativeQuantity  = errors.New("quantity must not be negative")
	ErrNegativePrice     = errors.New("price per unit must not be negative")
	ErrQuantityNotFinite = errors.New("quantity must be a finite number")
	ErrPriceNotFinite    = errors.New("price per unit must be a finite number")
)

// Item is an inventory entry. The only implementations are *HarvestLot and
// *EquipmentItem; use Match to dispatch on them.
type Item interface {
	ItemType() ItemType
	Row() []string
	Common() *Base
}

// Base holds the fields shared by every variant.
type Base struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	DateAdded time.Time `json:"date_added"`
	Notes     string    `json:"notes,omitempty"`
}

// Common returns the shared fields.
func (b *Base) Common() *Base { return b }

// HarvestLot is a lot of harvested produce.
type HarvestLot struct {
	Base
	Status       string   `json:"status"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty"`
}

// NewHarvestLot returns a harvest lot with the default status.
func NewHarvestLot(name string, quantity float64, unit string, dateAdded time.Time) *HarvestLot {
	return &HarvestLot{
		Base:   Base{Name: name, Quantity: quantity, Unit: unit, DateAdded: DateOf(dateAdded)},
		Status: DefaultStatus,
	}
}

// ItemType implements Item.
func (h *HarvestLot) ItemType() ItemType { return TypeHarvest }

// Row implements Item.
func (h *HarvestLot) Row() []string {
	price := ""
	if h.PricePerUnit != nil {
		price = strconv.FormatFloat(*h.PricePerUnit, 'f', 2, 64)
	}
	return h.row(TypeHarvest, h.Status, price)
}

// SetPrice sets the price per unit.
func (h *HarvestLot) SetPrice(price float64) {
	h.PricePerUnit = &price
}

// EquipmentItem is a piece of farm equipment.
type EquipmentItem struct {
	Base
	Condition string `json:"condition"`
}

// NewEquipmentItem returns an equipment item in the default condition.
func NewEquipmentItem(name string, quantity float64, unit string, dateAdded time.Time) *EquipmentItem {
	return &EquipmentItem{
		Base:      Base{Name: name, Quantity: quantity, Unit: unit, DateAdded: DateOf(dateAdded)},
		Condition: DefaultCondition,
	}
}

// ItemType implements Item.
func (e *EquipmentItem) ItemType() ItemType { return TypeEquipment }

// Row implements Item.
func (e *EquipmentItem) Row() []string {
	return e.row(TypeEquipment, e.Condition, "")
}

// RowHeader names the columns of Item.Row.
var RowHeader = []string{"ID", "Name", "Quantity", "Unit", "Type", "Date Added", "Status/Condition", "Price", "Notes"}

func (b *Base) row(kind ItemType, state, price string) []string {
	return []string{
		strconv.FormatInt(b.ID, 10),
		b.Name,
		strconv.FormatFloat(b.Quantity, 'f', 2, 64),
		b.Unit,
		string(kind),
		FormatDate(b.DateAdded),
		state,
		price,
		b.Notes,
	}
}

// Match calls harvest or equipment depending on the item's variant and
// returns the result. It panics on a nil item or a foreign implementation.
func Match[T any](item Item, harvest func(*HarvestLot) T, equipment func(*EquipmentItem) T) T {
	switch v := item.(type) {
	case *HarvestLot:
		return harvest(v)
	case *EquipmentItem:
		return equipment(v)
	default:
		panic("model: unknown item variant")
	}
}

// StateOf returns the variant's status or condition.
func StateOf(item Item) string {
	return Match(item,
		func(h *HarvestLot) string { return h.Status },
		func(e *EquipmentItem) string { return e.Condition },
	)
}

// Validate checks the fields a caller must get right before submitting an item.
func Validate(item Item) error {
	b := item.Common()
	if b.Name == "" {
		return ErrNameRequired
	}
	if !finite(b.Quantity) {
		return ErrQuantityNotFinite
	}
	if b.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return Match(item,
		func(h *HarvestLot) error {
			if h.PricePerUnit == nil {
				return nil
			}
			if !finite(*h.PricePerUnit) {
				return ErrPriceNotFinite
			}
			if *h.PricePerUnit < 0 {
				return ErrNegativePrice
			}
			return nil
		},
		func(*EquipmentItem) error { return nil },
	)
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
