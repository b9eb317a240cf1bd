package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/core/ports"
)

// maxSuggestions bounds top-N requests from review tooling.
const maxSuggestions = 10

type ClassificationAdvisorUseCase struct {
	engine ports.ClassificationEngine
}

func NewClassificationAdvisorUseCase(engine ports.ClassificationEngine) *ClassificationAdvisorUseCase {
	return &ClassificationAdvisorUseCase{engine: engine}
}

func (uc *ClassificationAdvisorUseCase) Preview(_ context.Context, text domain.PetitionText) (domain.ClassificationResult, error) {
	if strings.TrimSpace(text.Title) == "" && strings.TrimSpace(text.Description) == "" {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrInvalidInput, "preview classification", errors.New("title or description is required"))
	}
	result, err := uc.engine.Classify(text)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("classify text: %w", err)
	}
	return result, nil
}

func (uc *ClassificationAdvisorUseCase) Suggest(_ context.Context, text string, topN int) (domain.SuggestionSet, error) {
	if strings.TrimSpace(text) == "" {
		return domain.SuggestionSet{}, domain.WrapError(domain.ErrInvalidInput, "suggest classification", errors.New("text is required"))
	}
	if topN > maxSuggestions {
		topN = maxSuggestions
	}
	set, err := uc.engine.Suggest(text, topN)
	if err != nil {
		return domain.SuggestionSet{}, fmt.Errorf("suggest classification: %w", err)
	}
	return set, nil
}
