package ports

import (
	"github.com/grievease/petition-triage/internal/core/classification"
	"github.com/grievease/petition-triage/internal/core/domain"
)

// ClassificationEngine is the in-process classifier shared by the use cases.
// *classification.Engine satisfies it.
type ClassificationEngine interface {
	Classify(in domain.PetitionText) (domain.ClassificationResult, error)
	Reclassify(req domain.ReclassificationRequest) (domain.ReclassificationResult, error)
	Suggest(text string, topN int) (domain.SuggestionSet, error)
	Catalog() *classification.Catalog
	SetCatalog(c *classification.Catalog)
	SetTaxonomy(t *classification.Taxonomy)
}

var _ ClassificationEngine = (*classification.Engine)(nil)
