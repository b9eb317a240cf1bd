package ports

import (
	"context"
	"io"

	"github.com/grievease/petition-triage/internal/core/domain"
)

// PetitionSubmitter is the inbound contract for filing and auto-classifying petitions.
type PetitionSubmitter interface {
	Submit(ctx context.Context, req domain.SubmitPetitionRequest) (*domain.Petition, error)
	Reclassify(ctx context.Context, petitionID int64) (*domain.Petition, error)
}

// PetitionReclassifier is the inbound contract for officer overrides.
type PetitionReclassifier interface {
	Override(ctx context.Context, req domain.ReclassificationRequest) (*domain.ReclassificationResult, error)
}

// PetitionReader is the inbound read model for petitions and their override history.
type PetitionReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Petition, error)
	ListReclassifications(ctx context.Context, petitionID int64) ([]domain.Reclassification, error)
}

// ClassificationAdvisor runs the classifier without persisting anything.
type ClassificationAdvisor interface {
	Preview(ctx context.Context, text domain.PetitionText) (domain.ClassificationResult, error)
	Suggest(ctx context.Context, text string, topN int) (domain.SuggestionSet, error)
}

// CatalogService exposes reference data and reloads the classifier snapshot.
type CatalogService interface {
	Departments(ctx context.Context) ([]domain.Department, error)
	Categories(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error)
	Reload(ctx context.Context) (domain.CatalogStatus, error)
	Status() domain.CatalogStatus
}

// AnalyticsService aggregates petition statistics.
type AnalyticsService interface {
	UrgencyDistribution(ctx context.Context) ([]domain.UrgencyCount, error)
	DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error)
	Export(ctx context.Context, w io.Writer) error
	Archive(ctx context.Context) (string, error)
}

// EventProcessor handles petition events in the worker.
type EventProcessor interface {
	HandlePetitionEvent(ctx context.Context, event domain.PetitionEvent) error
}

// CatalogAdmin replaces or seeds reference data and exports the active snapshot.
type CatalogAdmin interface {
	Import(ctx context.Context, snapshot domain.CatalogSnapshot) (domain.CatalogStatus, error)
	Seed(ctx context.Context, snapshot domain.CatalogSnapshot) (bool, error)
	Snapshot(ctx context.Context) (domain.CatalogSnapshot, error)
}
