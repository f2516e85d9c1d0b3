package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestItemTypes(t *testing.T) {
	h := NewHarvestLot("Rice", 50, "kg", Date(2024, 1, 15))
	e := NewEquipmentItem("Tractor", 1, "pieces", Date(2024, 1, 15))

	if h.ItemType() != TypeHarvest {
		t.Errorf("expected %q, got %q", TypeHarvest, h.ItemType())
	}
	if e.ItemType() != TypeEquipment {
		t.Errorf("expected %q, got %q", TypeEquipment, e.ItemType())
	}
	if h.Status != DefaultStatus {
		t.Errorf("expected default status %q, got %q", DefaultStatus, h.Status)
	}
	if e.Condition != DefaultCondition {
		t.Errorf("expected default condition %q, got %q", DefaultCondition, e.Condition)
	}
}

func TestMatchDispatchesOnVariant(t *testing.T) {
	items := []Item{
		NewHarvestLot("Corn", 10, "kg", Today()),
		NewEquipmentItem("Plough", 1, "pieces", Today()),
	}
	want := []string{"harvest", "equipment"}

	for i, item := range items {
		got := Match(item,
			func(*HarvestLot) string { return "harvest" },
			func(*EquipmentItem) string { return "equipment" },
		)
		if got != want[i] {
			t.Errorf("Match(%T) = %q, want %q", item, got, want[i])
		}
	}
}

func TestStateOf(t *testing.T) {
	h := NewHarvestLot("Corn", 10, "kg", Today())
	h.Status = StatusSoldOut
	e := NewEquipmentItem("Plough", 1, "pieces", Today())
	e.Condition = ConditionNeedsRepair

	if got := StateOf(h); got != StatusSoldOut {
		t.Errorf("StateOf(harvest) = %q", got)
	}
	if got := StateOf(e); got != ConditionNeedsRepair {
		t.Errorf("StateOf(equipment) = %q", got)
	}
}

func TestRow(t *testing.T) {
	h := NewHarvestLot("Rice", 50, "kg", Date(2024, 3, 1))
	h.ID = 7
	h.SetPrice(57)
	h.Notes = "north field"

	want := []string{"7", "Rice", "50.00", "kg", "HARVEST", "2024-03-01", "Available", "57.00", "north field"}
	got := h.Row()
	if len(got) != len(RowHeader) {
		t.Fatalf("expected %d columns, got %d", len(RowHeader), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %s = %q, want %q", RowHeader[i], got[i], want[i])
		}
	}

	e := NewEquipmentItem("Tractor", 1, "pieces", Date(2024, 3, 1))
	if row := e.Row(); row[4] != "EQUIPMENT" || row[6] != "Good" || row[7] != "" {
		t.Errorf("unexpected equipment row %v", row)
	}
}

func TestValidate(t *testing.T) {
	negPrice := NewHarvestLot("Beans", 1, "kg", Today())
	negPrice.SetPrice(-1)
	infPrice := NewHarvestLot("Beans", 1, "kg", Today())
	infPrice.SetPrice(math.Inf(1))

	tests := []struct {
		name string
		item Item
		want error
	}{
		{"valid harvest", NewHarvestLot("Beans", 1, "kg", Today()), nil},
		{"valid equipment", NewEquipmentItem("Hoe", 0, "pieces", Today()), nil},
		{"empty name", NewHarvestLot("", 1, "kg", Today()), ErrNameRequired},
		{"negative quantity", NewEquipmentItem("Hoe", -1, "pieces", Today()), ErrNegativeQuantity},
		{"negative price", negPrice, ErrNegativePrice},
		{"infinite quantity", NewHarvestLot("Rice", math.Inf(1), "kg", Today()), ErrQuantityNotFinite},
		{"negative infinite quantity", NewEquipmentItem("Hoe", math.Inf(-1), "pieces", Today()), ErrQuantityNotFinite},
		{"NaN quantity", NewHarvestLot("Rice", math.NaN(), "kg", Today()), ErrQuantityNotFinite},
		{"infinite price", infPrice, ErrPriceNotFinite},
	}

	for _, tt := range tests {
		if err := Validate(tt.item); !errors.Is(err, tt.want) {
			t.Errorf("%s: Validate() = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	got := DateOf(time.Date(2024, 6, 30, 23, 30, 0, 0, loc))
	if !got.Equal(Date(2024, 6, 30)) {
		t.Errorf("DateOf = %v, want 2024-06-30", got)
	}
	if FormatDate(got) != "2024-06-30" {
		t.Errorf("FormatDate = %q", FormatDate(got))
	}
	if FormatDate(time.Time{}) != "" {
		t.Error("expected zero date to format as empty string")
	}
}
