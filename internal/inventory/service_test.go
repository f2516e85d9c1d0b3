package inventory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/kmetija/internal/db"
	"github.com/erazemk/kmetija/internal/model"
	"github.com/erazemk/kmetija/internal/store"
)

// rejectingStore fails Create for items with a given name.
type rejectingStore struct {
	Store
	reject string
}

var errRejected = errors.New("rejected")

func (s *rejectingStore) Create(ctx context.Context, item model.Item) error {
	if item.Common().Name == s.reject {
		return errRejected
	}
	return s.Store.Create(ctx, item)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.NewInventory(db.NewTestDB(t), db.SQLite))
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCSV(t *testing.T) {
	t.Run("CreatesDecodedItems", func(t *testing.T) {
		svc := newTestService(t)
		ctx := context.Background()

		path := writeFile(t, "ID,Name,Quantity,Unit,Date_Added,Notes,Status\n"+
			"1,Corn,100.00,kg,2024-01-15,,Fresh\n"+
			"2,Rice,abc,kg,2024-01-16,,Fresh\n"+
			"3,,5,kg,2024-01-17,,Fresh\n"+
			"4,Beans,20,kg,2024-01-18,dry,Processed\n")

		res, err := svc.ImportCSV(ctx, path)
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, res.RunID)
		require.Len(t, res.Created, 2)
		require.Empty(t, res.Failed)
		require.Len(t, res.Skipped, 1)
		require.Equal(t, 1, res.Dropped)

		// Ids come from the store, not the file.
		for _, item := range res.Created {
			require.Positive(t, item.Common().ID)
		}

		all, err := svc.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, "Beans", all[0].Common().Name)
		require.Equal(t, "Corn", all[1].Common().Name)
	})

	t.Run("OversizedAndOutOfRangeLines", func(t *testing.T) {
		svc := newTestService(t)
		ctx := context.Background()

		path := writeFile(t, "header\n"+
			"1,Corn,5,kg,2024-01-15,,Fresh\n"+
			"2,Rice,5,kg,2024-01-16,"+strings.Repeat("x", 2<<20)+",Fresh\n"+
			"3,Oats,1e400,kg,2024-01-17,,Fresh\n"+
			"4,Beans,5,kg,2024-01-18,,Fresh\n")

		res, err := svc.ImportCSV(ctx, path)
		require.NoError(t, err)
		require.Len(t, res.Created, 3)
		require.Len(t, res.Skipped, 1)
		require.Equal(t, 4, res.Skipped[0].Line)

		// Everything stored reads back, so a later export works.
		all, err := svc.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.NoError(t, svc.ExportCSV(ctx, filepath.Join(t.TempDir(), "out.csv"), all))
	})

	t.Run("ContinuesPastFailedItems", func(t *testing.T) {
		inner := store.NewInventory(db.NewTestDB(t), db.SQLite)
		svc := NewService(&rejectingStore{Store: inner, reject: "Rice"})
		ctx := context.Background()

		path := writeFile(t, "header\n"+
			"1,Corn,1,kg,2024-01-15,,Fresh\n"+
			"2,Rice,1,kg,2024-01-15,,Fresh\n"+
			"3,Oats,1,kg,2024-01-15,,Fresh\n")

		res, err := svc.ImportCSV(ctx, path)
		require.NoError(t, err)
		require.Len(t, res.Created, 2)
		require.Len(t, res.Failed, 1)
		require.Equal(t, "Rice", res.Failed[0].Item.Common().Name)
		require.ErrorIs(t, res.Failed[0].Err, errRejected)

		all, err := svc.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("MissingFile", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.ImportCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestExportCSV(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rice := model.NewHarvestLot("Rice", 50, "kg", model.Date(2024, 1, 15))
	rice.SetPrice(57)
	require.NoError(t, svc.Create(ctx, rice))
	tractor := model.NewEquipmentItem("Tractor", 1, "pieces", model.Date(2024, 1, 10))
	require.NoError(t, svc.Create(ctx, tractor))

	items, err := svc.GetAll(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, svc.ExportCSV(ctx, path, items))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, []string{
		"ID,Name,Quantity,Unit,Date_Added,Notes,Status,Price_Per_Unit",
		"1,Rice,50.00,kg,2024-01-15,,Available,57.00",
		"2,Tractor,1.00,pieces,2024-01-10,,Good",
	}, lines)

	t.Run("ReimportCreatesFreshIdentities", func(t *testing.T) {
		res, err := svc.ImportCSV(ctx, path)
		require.NoError(t, err)
		require.Len(t, res.Created, 2)
		require.Equal(t, int64(3), res.Created[0].Common().ID)
		require.Equal(t, int64(4), res.Created[1].Common().ID)

		// The equipment row comes back as a harvest lot.
		require.Equal(t, model.TypeHarvest, res.Created[1].ItemType())
	})
}

func TestExportCSVBadPath(t *testing.T) {
	svc := newTestService(t)
	err := svc.ExportCSV(context.Background(), filepath.Join(t.TempDir(), "missing", "out.csv"), nil)
	require.Error(t, err)
}

func TestServiceCRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	lot := model.NewHarvestLot("Garlic", 4, "kg", model.Today())
	require.NoError(t, svc.Create(ctx, lot))

	got, err := svc.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, "Garlic", got.Common().Name)

	lot.Quantity = 3
	n, err := svc.Update(ctx, lot)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	found, err := svc.Search(ctx, "Garl")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, 3.0, found[0].Common().Quantity)

	require.NoError(t, svc.Delete(ctx, lot.ID))
	got, err = svc.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}
