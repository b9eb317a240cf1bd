package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/core/ports"
)

type OverrideClassificationUseCase struct {
	repo      ports.PetitionRepository
	engine    ports.ClassificationEngine
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewOverrideClassificationUseCase(
	repo ports.PetitionRepository,
	engine ports.ClassificationEngine,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *OverrideClassificationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &OverrideClassificationUseCase{
		repo:      repo,
		engine:    engine,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Override applies an officer's department/category choice with full confidence and
// records it in the petition's audit trail. A category without a department moves the
// petition to the category's department; a new department without a category clears
// the previous category.
func (uc *OverrideClassificationUseCase) Override(
	ctx context.Context,
	req domain.ReclassificationRequest,
) (*domain.ReclassificationResult, error) {
	const op = "override classification"
	if req.PetitionID <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, errors.New("petition id must be positive"))
	}
	if req.DepartmentID == nil && req.CategoryID == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, op, errors.New("department_id or category_id is required"))
	}

	result, err := uc.engine.Reclassify(req)
	if err != nil {
		return nil, fmt.Errorf("validate reclassification: %w", err)
	}

	petition, err := uc.repo.GetByID(ctx, req.PetitionID)
	if err != nil {
		return nil, fmt.Errorf("fetch petition: %w", err)
	}

	rec := &domain.Reclassification{
		PetitionID:           petition.ID,
		PreviousDepartmentID: petition.DepartmentID,
		PreviousCategoryID:   petition.CategoryID,
		NewDepartmentID:      petition.DepartmentID,
		NewCategoryID:        petition.CategoryID,
		OfficerID:            strings.TrimSpace(req.OfficerID),
		Note:                 strings.TrimSpace(req.Note),
		CreatedAt:            uc.now(),
	}
	newDepartment, newCategory := petition.Department, petition.Category

	if result.DepartmentID != nil && *result.DepartmentID != petition.DepartmentID {
		rec.NewDepartmentID = *result.DepartmentID
		newDepartment = *result.DepartmentName
		rec.NewCategoryID, newCategory = nil, nil
	}
	if result.CategoryID != nil {
		cat, ok := uc.engine.Catalog().Category(*result.CategoryID)
		if !ok {
			return nil, domain.WrapError(domain.ErrInvalidReclassificationTarget, op, fmt.Errorf("category %d vanished", *result.CategoryID))
		}
		if cat.DepartmentID != rec.NewDepartmentID {
			dep, _ := uc.engine.Catalog().Department(cat.DepartmentID)
			rec.NewDepartmentID = dep.ID
			newDepartment = dep.Name
			depID, depName := dep.ID, dep.Name
			result.DepartmentID, result.DepartmentName = &depID, &depName
		}
		rec.NewCategoryID = result.CategoryID
		newCategory = result.CategoryName
	}

	rec.NewDepartment, rec.NewCategory = newDepartment, newCategory
	if err := uc.repo.ApplyReclassification(ctx, rec); err != nil {
		return nil, fmt.Errorf("apply reclassification: %w", err)
	}
	uc.logger.Info("petition_reclassified",
		"petition_id", rec.PetitionID,
		"from_department", rec.PreviousDepartmentID,
		"to_department", rec.NewDepartmentID,
		"officer_id", rec.OfficerID,
	)

	petition.DepartmentID = rec.NewDepartmentID
	petition.Department = newDepartment
	petition.CategoryID = rec.NewCategoryID
	petition.Category = newCategory
	petition.ClassificationConfidence = result.Confidence
	petition.ManuallyClassified = true

	if uc.publisher != nil {
		event := newPetitionEvent(domain.EventPetitionReclassified, petition, uc.now())
		if err := uc.publisher.PublishPetitionEvent(ctx, event); err != nil {
			uc.logger.Error("petition_event_publish_failed", "petition_id", petition.ID, "event_type", event.Type, "error", err)
		}
	}
	return &result, nil
}
