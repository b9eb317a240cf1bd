package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/grievease/petition-triage/internal/core/classification"
	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/core/ports"
)

// CatalogObserver receives one call per catalog load with the source that served it.
type CatalogObserver interface {
	ObserveCatalogLoad(source domain.CatalogSourceKind, err error)
}

type CatalogOptions struct {
	// FallbackEnabled allows the built-in two-department catalog when nothing else loads.
	FallbackEnabled bool
	Logger          *slog.Logger
	Observer        CatalogObserver
}

// CatalogUseCase loads reference data into the engine and serves catalog listings.
// Load order: database, then the cached snapshot, then the built-in fallback.
type CatalogUseCase struct {
	source ports.CatalogSource
	cache  ports.CatalogCache
	engine ports.ClassificationEngine
	opts   CatalogOptions
	now    func() time.Time

	mu     sync.Mutex
	status domain.CatalogStatus
}

func NewCatalogUseCase(
	source ports.CatalogSource,
	cache ports.CatalogCache,
	engine ports.ClassificationEngine,
	opts CatalogOptions,
) *CatalogUseCase {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CatalogUseCase{
		source: source,
		cache:  cache,
		engine: engine,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Reload builds a fresh snapshot and swaps it into the engine. When neither the database
// nor the cache answers, a previously loaded catalog stays in place and ErrTemporary is
// returned; the built-in fallback only stands in when nothing real was ever loaded.
func (uc *CatalogUseCase) Reload(ctx context.Context) (domain.CatalogStatus, error) {
	catalog, snapshot, source, err := uc.load(ctx)
	uc.observe(source, err)
	if err != nil {
		return domain.CatalogStatus{}, err
	}

	uc.engine.SetCatalog(catalog)
	deps, cats := catalog.Len()
	status := domain.CatalogStatus{
		Source:      source,
		Departments: deps,
		Categories:  cats,
		LoadedAt:    snapshot.LoadedAt,
	}
	uc.mu.Lock()
	uc.status = status
	uc.mu.Unlock()

	uc.opts.Logger.Info("catalog_loaded", "source", source, "departments", deps, "categories", cats)
	return status, nil
}

func (uc *CatalogUseCase) Status() domain.CatalogStatus {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.status
}

func (uc *CatalogUseCase) load(ctx context.Context) (*classification.Catalog, domain.CatalogSnapshot, domain.CatalogSourceKind, error) {
	var failures []error

	snapshot, err := uc.loadFromSource(ctx)
	if err == nil {
		catalog, buildErr := classification.NewCatalog(snapshot.Departments, snapshot.Categories)
		if buildErr == nil {
			uc.storeInCache(ctx, snapshot)
			return catalog, snapshot, domain.CatalogFromDatabase, nil
		}
		err = buildErr
	}
	failures = append(failures, fmt.Errorf("database: %w", err))
	uc.opts.Logger.Warn("catalog_database_unavailable", "error", err)

	if cached, cacheErr := uc.loadFromCache(ctx); cacheErr == nil {
		catalog, buildErr := classification.NewCatalog(cached.Departments, cached.Categories)
		if buildErr == nil {
			uc.opts.Logger.Warn("catalog_served_from_cache", "loaded_at", cached.LoadedAt)
			return catalog, *cached, domain.CatalogFromCache, nil
		}
		failures = append(failures, fmt.Errorf("cache: %w", buildErr))
	} else {
		failures = append(failures, fmt.Errorf("cache: %w", cacheErr))
	}

	if current := uc.engine.Catalog(); current != nil && !current.IsFallback() {
		err := errors.Join(failures...)
		uc.opts.Logger.Warn("catalog_refresh_failed_keeping_current", "source", uc.Status().Source, "error", err)
		return nil, domain.CatalogSnapshot{}, uc.Status().Source, domain.WrapError(domain.ErrTemporary, "reload catalog", err)
	}

	if uc.opts.FallbackEnabled {
		uc.opts.Logger.Warn("catalog_fallback_substituted", "error", errors.Join(failures...))
		fallback := classification.FallbackCatalog()
		return fallback, domain.CatalogSnapshot{
			Departments: fallback.Departments(),
			Categories:  fallback.Categories(domain.CategoryFilter{}),
			LoadedAt:    uc.now(),
		}, domain.CatalogFromFallback, nil
	}
	return nil, domain.CatalogSnapshot{}, "", domain.WrapError(domain.ErrCatalogUnavailable, "load catalog", errors.Join(failures...))
}

func (uc *CatalogUseCase) loadFromSource(ctx context.Context) (domain.CatalogSnapshot, error) {
	if uc.source == nil {
		return domain.CatalogSnapshot{}, errors.New("no catalog source configured")
	}
	deps, err := uc.source.ListDepartments(ctx)
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("list departments: %w", err)
	}
	cats, err := uc.source.ListCategories(ctx, domain.CategoryFilter{})
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("list categories: %w", err)
	}
	if len(deps) == 0 {
		return domain.CatalogSnapshot{}, errors.New("department table is empty")
	}
	if len(cats) == 0 {
		cats = fallbackCategoriesFor(deps)
		uc.opts.Logger.Warn("catalog_categories_empty", "substituted", len(cats))
	}
	return domain.CatalogSnapshot{Departments: deps, Categories: cats, LoadedAt: uc.now()}, nil
}

// fallbackCategoriesFor returns the built-in categories whose department exists in deps.
func fallbackCategoriesFor(deps []domain.Department) []domain.Category {
	known := make(map[int64]bool, len(deps))
	for _, d := range deps {
		known[d.ID] = true
	}
	var out []domain.Category
	for _, c := range classification.FallbackCategories() {
		if known[c.DepartmentID] {
			out = append(out, c)
		}
	}
	return out
}

func (uc *CatalogUseCase) loadFromCache(ctx context.Context) (*domain.CatalogSnapshot, error) {
	if uc.cache == nil {
		return nil, errors.New("no catalog cache configured")
	}
	snapshot, err := uc.cache.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, errors.New("cache miss")
	}
	return snapshot, nil
}

func (uc *CatalogUseCase) storeInCache(ctx context.Context, snapshot domain.CatalogSnapshot) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.StoreCatalog(ctx, snapshot); err != nil {
		uc.opts.Logger.Warn("catalog_cache_store_failed", "error", err)
	}
}

func (uc *CatalogUseCase) observe(source domain.CatalogSourceKind, err error) {
	if uc.opts.Observer != nil {
		uc.opts.Observer.ObserveCatalogLoad(source, err)
	}
}

// Departments lists departments from the engine's current snapshot.
func (uc *CatalogUseCase) Departments(_ context.Context) ([]domain.Department, error) {
	catalog := uc.engine.Catalog()
	if catalog == nil {
		return nil, domain.WrapError(domain.ErrCatalogUnavailable, "list departments", errors.New("catalog not loaded"))
	}
	return catalog.Departments(), nil
}

// Categories lists active categories, optionally for one department.
func (uc *CatalogUseCase) Categories(_ context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	catalog := uc.engine.Catalog()
	if catalog == nil {
		return nil, domain.WrapError(domain.ErrCatalogUnavailable, "list categories", errors.New("catalog not loaded"))
	}
	filter.ActiveOnly = true
	return catalog.Categories(filter), nil
}

// ApplyTaxonomy swaps the keyword table used for department and urgency scoring.
func (uc *CatalogUseCase) ApplyTaxonomy(t *classification.Taxonomy) {
	uc.engine.SetTaxonomy(t)
}
