package ports

import (
	"context"
	"io"

	"github.com/grievease/petition-triage/internal/core/domain"
)

// CatalogSource reads departments and categories from the system of record.
type CatalogSource interface {
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	ListCategories(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error)
}

// CatalogWriter replaces reference data. SeedCatalog only writes into empty tables.
type CatalogWriter interface {
	UpsertCatalog(ctx context.Context, snapshot domain.CatalogSnapshot) error
	SeedCatalog(ctx context.Context, snapshot domain.CatalogSnapshot) (bool, error)
}

// CatalogCache keeps the last good snapshot. LoadCatalog returns nil, nil on a miss.
type CatalogCache interface {
	LoadCatalog(ctx context.Context) (*domain.CatalogSnapshot, error)
	StoreCatalog(ctx context.Context, snapshot domain.CatalogSnapshot) error
}

// PetitionRepository persists petitions and their classification history.
type PetitionRepository interface {
	Create(ctx context.Context, petition *domain.Petition) error
	GetByID(ctx context.Context, id int64) (*domain.Petition, error)
	// SaveClassification returns domain.ErrAlreadyManual when an officer classified the petition.
	SaveClassification(ctx context.Context, id int64, result domain.ClassificationResult) error
	ApplyReclassification(ctx context.Context, rec *domain.Reclassification) error
	ListReclassifications(ctx context.Context, petitionID int64) ([]domain.Reclassification, error)
	UrgencyDistribution(ctx context.Context) ([]domain.UrgencyCount, error)
	DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error)
}

// EventPublisher emits petition events after state changes are persisted.
type EventPublisher interface {
	PublishPetitionEvent(ctx context.Context, event domain.PetitionEvent) error
}

// EventSubscriber consumes petition events until ctx is done.
type EventSubscriber interface {
	SubscribePetitionEvents(ctx context.Context, handler func(context.Context, domain.PetitionEvent) error) error
}

// Notifier alerts officers about critical petitions.
type Notifier interface {
	NotifyCritical(ctx context.Context, event domain.PetitionEvent) error
}

// RoutingGraph projects petition routing into a graph store.
type RoutingGraph interface {
	ProjectPetition(ctx context.Context, event domain.PetitionEvent) error
}

// ReportStorage archives rendered analytics reports.
type ReportStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ReportRenderer writes an analytics report as a spreadsheet.
type ReportRenderer interface {
	RenderAnalytics(report domain.AnalyticsReport, w io.Writer) error
}

// TextExtractor pulls petition text out of an uploaded letter.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, body io.Reader) (string, error)
}
