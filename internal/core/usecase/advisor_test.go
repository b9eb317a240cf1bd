package usecase

import (
	"context"
	"testing"

	"github.com/grievease/petition-triage/internal/core/domain"
)

func TestAdvisorPreviewAndSuggest(t *testing.T) {
	uc := NewClassificationAdvisorUseCase(newTestEngine())

	result, err := uc.Preview(context.Background(), domain.PetitionText{Title: "Doctor absent at hospital"})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if result.DepartmentID != 2 {
		t.Fatalf("expected Health Department, got %d", result.DepartmentID)
	}

	set, err := uc.Suggest(context.Background(), "leaking water pipe near the park", 50)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(set.Suggestions) != 3 {
		t.Fatalf("expected every resolvable department, got %d", len(set.Suggestions))
	}
	if set.Suggestions[0].DepartmentID != 1 {
		t.Fatalf("expected Public Works first, got %+v", set.Suggestions[0])
	}
}

func TestAdvisorRejectsEmptyText(t *testing.T) {
	uc := NewClassificationAdvisorUseCase(newTestEngine())

	if _, err := uc.Preview(context.Background(), domain.PetitionText{Location: "Ward 3"}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Suggest(context.Background(), "   ", 3); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
