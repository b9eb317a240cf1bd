package usecase

import (
	"context"
	"fmt"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/core/ports"
)

type ReadPetitionUseCase struct {
	repo ports.PetitionRepository
}

func NewReadPetitionUseCase(repo ports.PetitionRepository) *ReadPetitionUseCase {
	return &ReadPetitionUseCase{repo: repo}
}

func (uc *ReadPetitionUseCase) GetByID(ctx context.Context, id int64) (*domain.Petition, error) {
	petition, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch petition: %w", err)
	}
	return petition, nil
}

func (uc *ReadPetitionUseCase) ListReclassifications(ctx context.Context, petitionID int64) ([]domain.Reclassification, error) {
	if _, err := uc.repo.GetByID(ctx, petitionID); err != nil {
		return nil, fmt.Errorf("fetch petition: %w", err)
	}
	items, err := uc.repo.ListReclassifications(ctx, petitionID)
	if err != nil {
		return nil, fmt.Errorf("list reclassifications: %w", err)
	}
	return items, nil
}
