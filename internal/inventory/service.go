// Package inventory is the entry point callers use: item CRUD and search
// backed by the store, plus CSV export and best-effort CSV import.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/erazemk/kmetija/internal/csvcodec"
	"github.com/erazemk/kmetija/internal/model"
)

// Store is the persistence the service needs. *store.Inventory implements it.
type Store interface {
	Create(ctx context.Context, item model.Item) error
	GetAll(ctx context.Context) ([]model.Item, error)
	GetByID(ctx context.Context, id int64) (model.Item, error)
	Update(ctx context.Context, item model.Item) (int64, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]model.Item, error)
}

// Service exposes inventory operations to callers.
type Service struct {
	store Store
}

// NewService returns a service backed by s.
func NewService(s Store) *Service {
	return &Service{store: s}
}

// Create stores item and sets its id.
func (svc *Service) Create(ctx context.Context, item model.Item) error {
	return svc.store.Create(ctx, item)
}

// GetAll returns every item, most recent first.
func (svc *Service) GetAll(ctx context.Context) ([]model.Item, error) {
	return svc.store.GetAll(ctx)
}

// GetByID returns the item with the given id, or nil if there is none.
func (svc *Service) GetByID(ctx context.Context, id int64) (model.Item, error) {
	return svc.store.GetByID(ctx, id)
}

// Update replaces the stored item's fields and returns the affected row count.
func (svc *Service) Update(ctx context.Context, item model.Item) (int64, error) {
	return svc.store.Update(ctx, item)
}

// Delete removes the item with the given id.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.store.Delete(ctx, id)
}

// Search returns items whose name, notes or type contain query.
func (svc *Service) Search(ctx context.Context, query string) ([]model.Item, error) {
	return svc.store.Search(ctx, query)
}

// ExportCSV writes items to path, replacing any existing file.
func (svc *Service) ExportCSV(ctx context.Context, path string, items []model.Item) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing export file: %w", cerr)
		}
	}()

	if err := csvcodec.Write(f, items); err != nil {
		return fmt.Errorf("exporting to %s: %w", path, err)
	}

	slog.InfoContext(ctx, "inventory exported", "path", path, "items", len(items))
	return nil
}
