package classification

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/grievease/petition-triage/internal/core/domain"
)

const (
	DefaultSuggestionCount = 3
	SuggestionMethod       = "keyword_matching"

	reasoningKeywordLimit = 3
)

// Engine classifies petition text against the current catalog and taxonomy snapshots.
// It is safe for concurrent use; SetCatalog and SetTaxonomy swap whole snapshots.
type Engine struct {
	catalog  atomic.Pointer[Catalog]
	taxonomy atomic.Pointer[Taxonomy]
	jitter   Jitter
}

type Option func(*Engine)

func WithJitter(j Jitter) Option {
	return func(e *Engine) {
		if j != nil {
			e.jitter = j
		}
	}
}

func WithTaxonomy(t *Taxonomy) Option {
	return func(e *Engine) {
		if t != nil {
			e.taxonomy.Store(t)
		}
	}
}

// NewEngine builds an engine. A nil catalog leaves the engine unable to classify
// until SetCatalog is called.
func NewEngine(catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{jitter: DefaultJitter()}
	e.taxonomy.Store(DefaultTaxonomy())
	if catalog != nil {
		e.catalog.Store(catalog)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) SetCatalog(c *Catalog) {
	if c != nil {
		e.catalog.Store(c)
	}
}

func (e *Engine) SetTaxonomy(t *Taxonomy) {
	if t != nil {
		e.taxonomy.Store(t)
	}
}

// Catalog returns the current snapshot or nil.
func (e *Engine) Catalog() *Catalog {
	return e.catalog.Load()
}

func (e *Engine) Taxonomy() *Taxonomy {
	return e.taxonomy.Load()
}

func (e *Engine) snapshot(operation string) (*Catalog, *Taxonomy, error) {
	catalog := e.catalog.Load()
	if catalog == nil {
		return nil, nil, domain.WrapError(domain.ErrCatalogUnavailable, operation, errors.New("no catalog loaded"))
	}
	return catalog, e.taxonomy.Load(), nil
}

// Classify assigns department, category, urgency and confidence to petition text.
// Text without any keyword evidence lands on the fallback department with Degraded set.
func (e *Engine) Classify(in domain.PetitionText) (domain.ClassificationResult, error) {
	catalog, taxonomy, err := e.snapshot("classify petition")
	if err != nil {
		return domain.ClassificationResult{}, err
	}

	text := Normalize(in.Title, in.Description, in.Location)
	depScore, degraded := pickDepartment(taxonomy, catalog, text)
	dep, _ := catalog.Department(depScore.ID)

	result := domain.ClassificationResult{
		DepartmentID:         dep.ID,
		DepartmentName:       dep.Name,
		DepartmentConfidence: depScore.Score,
		UrgencyLevel:         taxonomy.EstimateUrgency(text),
		Degraded:             degraded,
	}

	var matched []string
	if catScore, ok := catalog.ScoreCategories(text, dep.ID).Best(); ok && catScore.Score > 0 {
		cat, _ := catalog.Category(catScore.ID)
		id, name := cat.ID, cat.Name
		result.CategoryID = &id
		result.CategoryName = &name
		result.CategoryConfidence = catScore.Score
		matched = catScore.Matched
	}

	confidence := result.DepartmentConfidence
	if result.HasCategory() {
		confidence = (result.DepartmentConfidence + result.CategoryConfidence) / 2
	}
	result.Confidence = clampScore(confidence + e.jitter.Offset())
	result.Reasoning = reasoning(result, matched)
	return result, nil
}

// pickDepartment chooses the best department the catalog can resolve. Departments
// the catalog does not know are skipped so the result always names a real department.
func pickDepartment(taxonomy *Taxonomy, catalog *Catalog, text string) (Score, bool) {
	var best Score
	found := false
	for _, s := range taxonomy.ScoreDepartments(text) {
		if s.Score <= 0 || len(s.Matched) == 0 {
			continue
		}
		if _, ok := catalog.Department(s.ID); !ok {
			continue
		}
		if !found || s.Score > best.Score {
			best, found = s, true
		}
	}
	if found {
		return best, false
	}

	id := taxonomy.FallbackDepartmentID
	if _, ok := catalog.Department(id); !ok {
		id = catalog.departments[0].ID
	}
	return Score{ID: id, Score: FallbackScore}, true
}

func reasoning(result domain.ClassificationResult, matched []string) string {
	categoryName := domain.GeneralCategoryName
	if result.CategoryName != nil {
		categoryName = *result.CategoryName
	}
	basis := "content analysis and context"
	if len(matched) > 0 {
		basis = "keywords: " + strings.Join(matched[:min(len(matched), reasoningKeywordLimit)], ", ")
	}
	return fmt.Sprintf("Classified as %s - %s with %s priority based on %s. Priority determined by %s.",
		result.DepartmentName, categoryName, result.UrgencyLevel, basis, urgencyClauses[result.UrgencyLevel])
}

// Reclassify validates an officer override and resolves the names of the supplied targets.
// The result always carries full confidence and the manual flag.
func (e *Engine) Reclassify(req domain.ReclassificationRequest) (domain.ReclassificationResult, error) {
	const op = "reclassify petition"
	catalog, _, err := e.snapshot(op)
	if err != nil {
		return domain.ReclassificationResult{}, err
	}

	result := domain.ReclassificationResult{
		PetitionID:         req.PetitionID,
		Confidence:         domain.ManualConfidence,
		ManuallyClassified: true,
	}
	if req.DepartmentID != nil {
		dep, ok := catalog.Department(*req.DepartmentID)
		if !ok {
			return domain.ReclassificationResult{}, domain.WrapError(domain.ErrInvalidReclassificationTarget, op,
				fmt.Errorf("department %d does not exist", *req.DepartmentID))
		}
		id, name := dep.ID, dep.Name
		result.DepartmentID = &id
		result.DepartmentName = &name
	}
	if req.CategoryID != nil {
		cat, ok := catalog.Category(*req.CategoryID)
		if !ok {
			return domain.ReclassificationResult{}, domain.WrapError(domain.ErrInvalidReclassificationTarget, op,
				fmt.Errorf("category %d does not exist", *req.CategoryID))
		}
		if req.DepartmentID != nil && cat.DepartmentID != *req.DepartmentID {
			return domain.ReclassificationResult{}, domain.WrapError(domain.ErrInvalidReclassificationTarget, op,
				fmt.Errorf("category %d belongs to department %d, not %d", cat.ID, cat.DepartmentID, *req.DepartmentID))
		}
		id, name := cat.ID, cat.Name
		result.CategoryID = &id
		result.CategoryName = &name
	}
	return result, nil
}

// Suggest ranks departments for manual review and pairs each with its best category.
// It applies no jitter and never mutates state.
func (e *Engine) Suggest(text string, topN int) (domain.SuggestionSet, error) {
	catalog, taxonomy, err := e.snapshot("suggest classification")
	if err != nil {
		return domain.SuggestionSet{}, err
	}
	if topN <= 0 {
		topN = DefaultSuggestionCount
	}

	text = strings.ToLower(text)
	var resolvable ScoreTable
	for _, s := range taxonomy.ScoreDepartments(text) {
		if _, ok := catalog.Department(s.ID); ok {
			resolvable = append(resolvable, s)
		}
	}
	ranked := resolvable.Ranked()
	ranked = ranked[:min(len(ranked), topN)]

	set := domain.SuggestionSet{
		Suggestions:  make([]domain.Suggestion, 0, len(ranked)),
		TextAnalyzed: len(strings.Fields(text)),
		Method:       SuggestionMethod,
	}
	for _, s := range ranked {
		dep, _ := catalog.Department(s.ID)
		suggestion := domain.Suggestion{
			DepartmentID:   dep.ID,
			DepartmentName: dep.Name,
			CategoryName:   domain.GeneralCategoryName,
			Confidence:     s.Score,
			Reasoning:      fmt.Sprintf("Matched keywords and content analysis (confidence: %d%%)", s.Score),
		}
		if catScore, ok := catalog.ScoreCategories(text, dep.ID).Best(); ok && catScore.Score > 0 {
			cat, _ := catalog.Category(catScore.ID)
			id := cat.ID
			suggestion.CategoryID = &id
			suggestion.CategoryName = cat.Name
			suggestion.CategoryConfidence = catScore.Score
		}
		set.Suggestions = append(set.Suggestions, suggestion)
	}
	return set, nil
}
