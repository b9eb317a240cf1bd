package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/core/ports"
)

const (
	minTitleLength       = 10
	minDescriptionLength = 50
)

type SubmitPetitionUseCase struct {
	repo      ports.PetitionRepository
	engine    ports.ClassificationEngine
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewSubmitPetitionUseCase(
	repo ports.PetitionRepository,
	engine ports.ClassificationEngine,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *SubmitPetitionUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitPetitionUseCase{
		repo:      repo,
		engine:    engine,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates citizen input, classifies it, sets the due date and stores the petition.
func (uc *SubmitPetitionUseCase) Submit(ctx context.Context, req domain.SubmitPetitionRequest) (*domain.Petition, error) {
	req = trimSubmission(req)
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	result, err := uc.engine.Classify(domain.PetitionText{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("classify petition: %w", err)
	}

	submittedAt := uc.now()
	dueDate := result.UrgencyLevel.DueDate(submittedAt)
	petition := &domain.Petition{
		CitizenID:        req.CitizenID,
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		State:            req.State,
		District:         req.District,
		Taluk:            req.Taluk,
		Location:         req.Location,
		Status:           domain.PetitionSubmitted,
		IsPublic:         req.IsPublic,
		SubmittedAt:      submittedAt,
		DueDate:          &dueDate,
	}
	petition.ApplyClassification(result)

	if err := uc.repo.Create(ctx, petition); err != nil {
		return nil, fmt.Errorf("create petition: %w", err)
	}
	if result.Degraded {
		uc.logger.Warn("petition_classification_degraded", "petition_id", petition.ID, "department_id", result.DepartmentID)
	}

	uc.publish(ctx, newPetitionEvent(domain.EventPetitionClassified, petition, uc.now()))
	return petition, nil
}

// Reclassify re-runs the automatic classifier for a stored petition, for example after
// a catalog reload. Petitions an officer already classified are left untouched.
func (uc *SubmitPetitionUseCase) Reclassify(ctx context.Context, petitionID int64) (*domain.Petition, error) {
	petition, err := uc.repo.GetByID(ctx, petitionID)
	if err != nil {
		return nil, fmt.Errorf("fetch petition: %w", err)
	}
	if petition.ManuallyClassified {
		return nil, domain.WrapError(domain.ErrAlreadyManual, "reclassify petition", fmt.Errorf("petition %d", petitionID))
	}

	result, err := uc.engine.Classify(petition.Text())
	if err != nil {
		return nil, fmt.Errorf("classify petition: %w", err)
	}
	if err := uc.repo.SaveClassification(ctx, petitionID, result); err != nil {
		return nil, fmt.Errorf("save classification: %w", err)
	}
	petition.ApplyClassification(result)

	uc.publish(ctx, newPetitionEvent(domain.EventPetitionClassified, petition, uc.now()))
	return petition, nil
}

func (uc *SubmitPetitionUseCase) publish(ctx context.Context, event domain.PetitionEvent) {
	if uc.publisher == nil {
		return
	}
	// The petition is already stored; a lost event only delays notifications.
	if err := uc.publisher.PublishPetitionEvent(ctx, event); err != nil {
		uc.logger.Error("petition_event_publish_failed",
			"petition_id", event.PetitionID,
			"event_type", event.Type,
			"error", err,
		)
	}
}

func trimSubmission(req domain.SubmitPetitionRequest) domain.SubmitPetitionRequest {
	req.CitizenID = strings.TrimSpace(req.CitizenID)
	req.Title = strings.TrimSpace(req.Title)
	req.ShortDescription = strings.TrimSpace(req.ShortDescription)
	req.Description = strings.TrimSpace(req.Description)
	req.State = strings.TrimSpace(req.State)
	req.District = strings.TrimSpace(req.District)
	req.Taluk = strings.TrimSpace(req.Taluk)
	req.Location = strings.TrimSpace(req.Location)
	return req
}

func validateSubmission(req domain.SubmitPetitionRequest) error {
	var problems []error
	if utf8.RuneCountInString(req.Title) < minTitleLength {
		problems = append(problems, fmt.Errorf("title must be at least %d characters", minTitleLength))
	}
	if utf8.RuneCountInString(req.Description) < minDescriptionLength {
		problems = append(problems, fmt.Errorf("description must be at least %d characters", minDescriptionLength))
	}
	if req.State == "" {
		problems = append(problems, errors.New("state is required"))
	}
	if req.District == "" {
		problems = append(problems, errors.New("district is required"))
	}
	if len(problems) == 0 {
		return nil
	}
	return domain.WrapError(domain.ErrInvalidInput, "validate petition", errors.Join(problems...))
}

func newPetitionEvent(kind domain.PetitionEventType, p *domain.Petition, at time.Time) domain.PetitionEvent {
	return domain.PetitionEvent{
		ID:                 uuid.NewString(),
		Type:               kind,
		PetitionID:         p.ID,
		Title:              p.Title,
		DepartmentID:       p.DepartmentID,
		Department:         p.Department,
		CategoryID:         p.CategoryID,
		Category:           p.Category,
		UrgencyLevel:       p.UrgencyLevel,
		Confidence:         p.ClassificationConfidence,
		ManuallyClassified: p.ManuallyClassified,
		OccurredAt:         at,
	}
}
