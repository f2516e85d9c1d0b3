package store

import (
	"context"
	"os"
	"testing"

	"github.com/erazemk/kmetija/internal/db"
	"github.com/erazemk/kmetija/internal/model"
)

// newPostgresInventory connects to the database named by
// KMETIJA_TEST_DATABASE_URL and recreates the inventory table. The test is
// skipped when the variable is unset.
func newPostgresInventory(t *testing.T) *Inventory {
	t.Helper()

	url := os.Getenv("KMETIJA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("KMETIJA_TEST_DATABASE_URL not set")
	}

	database, err := db.OpenPostgres(url)
	if err != nil {
		t.Fatalf("opening postgres: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := database.Exec(`DROP TABLE IF EXISTS inventory`); err != nil {
		t.Fatalf("dropping inventory table: %v", err)
	}
	if err := db.EnsureSchema(database, db.Postgres); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return NewInventory(database, db.Postgres)
}

func TestPostgresRoundTrip(t *testing.T) {
	s := newPostgresInventory(t)
	ctx := context.Background()

	rice := harvest("Rice", 50, "2024-01-15")
	rice.SetPrice(57)
	mustCreate(t, s, rice)
	mustCreate(t, s, equipment("Tractor", "2024-01-10"))

	items, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	h, ok := items[0].(*model.HarvestLot)
	if !ok || h.PricePerUnit == nil || *h.PricePerUnit != 57 {
		t.Errorf("unexpected first item %+v", items[0])
	}

	found, err := s.Search(ctx, "Tract")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].ItemType() != model.TypeEquipment {
		t.Errorf("expected the tractor, got %v", found)
	}

	if _, err := s.Update(ctx, &model.EquipmentItem{Base: rice.Base}); err == nil {
		t.Error("expected variant change to be rejected")
	}
}

func TestPostgresRepairsIdentityCollision(t *testing.T) {
	s := newPostgresInventory(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2} {
		_, err := s.db.Exec(`INSERT INTO inventory (item_id, name, quantity, unit, item_type, date_added)
			VALUES ($1, 'imported', 1, 'kg', 'HARVEST', '2024-01-01')`, id)
		if err != nil {
			t.Fatalf("seeding row %d: %v", id, err)
		}
	}

	lot := harvest("Barley", 1, "2024-04-01")
	if err := s.Create(ctx, lot); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if lot.ID != 3 {
		t.Errorf("expected id 3 after repair, got %d", lot.ID)
	}
}
