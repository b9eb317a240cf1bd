package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/grievease/petition-triage/internal/core/classification"
	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/core/ports"
)

// CatalogAdminUseCase replaces reference data in the system of record and reloads the engine.
type CatalogAdminUseCase struct {
	writer  ports.CatalogWriter
	catalog *CatalogUseCase
}

func NewCatalogAdminUseCase(writer ports.CatalogWriter, catalog *CatalogUseCase) *CatalogAdminUseCase {
	return &CatalogAdminUseCase{writer: writer, catalog: catalog}
}

// Import validates the snapshot before writing so a bad spreadsheet never reaches the tables.
func (uc *CatalogAdminUseCase) Import(ctx context.Context, snapshot domain.CatalogSnapshot) (domain.CatalogStatus, error) {
	if _, err := classification.NewCatalog(snapshot.Departments, snapshot.Categories); err != nil {
		return domain.CatalogStatus{}, err
	}
	if err := uc.writer.UpsertCatalog(ctx, snapshot); err != nil {
		return domain.CatalogStatus{}, fmt.Errorf("import catalog: %w", err)
	}
	return uc.catalog.Reload(ctx)
}

// Seed writes the snapshot only into empty tables. It reports whether anything was written.
func (uc *CatalogAdminUseCase) Seed(ctx context.Context, snapshot domain.CatalogSnapshot) (bool, error) {
	seeded, err := uc.writer.SeedCatalog(ctx, snapshot)
	if err != nil {
		return false, fmt.Errorf("seed catalog: %w", err)
	}
	if seeded {
		if _, err := uc.catalog.Reload(ctx); err != nil {
			return true, err
		}
	}
	return seeded, nil
}

// Snapshot returns the catalog the engine currently classifies with, inactive categories included.
func (uc *CatalogAdminUseCase) Snapshot(_ context.Context) (domain.CatalogSnapshot, error) {
	current := uc.catalog.engine.Catalog()
	if current == nil {
		return domain.CatalogSnapshot{}, domain.WrapError(domain.ErrCatalogUnavailable, "snapshot catalog", errors.New("catalog not loaded"))
	}
	return domain.CatalogSnapshot{
		Departments: current.Departments(),
		Categories:  current.Categories(domain.CategoryFilter{}),
		LoadedAt:    uc.catalog.Status().LoadedAt,
	}, nil
}
