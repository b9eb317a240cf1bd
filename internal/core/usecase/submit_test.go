package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grievease/petition-triage/internal/core/domain"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func validSubmission() domain.SubmitPetitionRequest {
	return domain.SubmitPetitionRequest{
		CitizenID:   "citizen-7",
		Title:       "Water pipe burst on our street",
		Description: "The main water pipe near the school has burst and the street is flooded since morning.",
		State:       "Tamil Nadu",
		District:    "Chennai",
		Location:    "Ward 12",
	}
}

func TestSubmitClassifiesAndStoresPetition(t *testing.T) {
	repo := newPetitionRepoFake()
	pub := &publisherFake{}
	uc := NewSubmitPetitionUseCase(repo, newTestEngine(), pub, nil)
	uc.now = func() time.Time { return fixedNow }

	petition, err := uc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if petition.ID != 101 {
		t.Fatalf("expected id assigned by repo, got %d", petition.ID)
	}
	if petition.Status != domain.PetitionSubmitted {
		t.Fatalf("unexpected status %q", petition.Status)
	}
	if petition.DepartmentID != 1 || petition.Department != "Public Works" {
		t.Fatalf("unexpected department %d/%s", petition.DepartmentID, petition.Department)
	}
	if petition.CategoryID == nil || *petition.CategoryID != 2 {
		t.Fatalf("expected Water Supply category, got %v", petition.CategoryID)
	}
	if petition.UrgencyLevel != domain.UrgencyCritical {
		t.Fatalf("expected critical urgency, got %s", petition.UrgencyLevel)
	}
	if petition.ClassificationConfidence != 37 {
		t.Fatalf("expected confidence 37, got %d", petition.ClassificationConfidence)
	}
	if petition.DueDate == nil || !petition.DueDate.Equal(fixedNow.Add(24*time.Hour)) {
		t.Fatalf("unexpected due date %v", petition.DueDate)
	}
	if petition.ManuallyClassified {
		t.Fatalf("automatic classification must not be flagged manual")
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	if pub.events[0].Type != domain.EventPetitionClassified || pub.events[0].PetitionID != 101 {
		t.Fatalf("unexpected event %+v", pub.events[0])
	}
	if pub.events[0].ID == "" {
		t.Fatalf("expected event id")
	}
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	tests := map[string]func(*domain.SubmitPetitionRequest){
		"short title":       func(r *domain.SubmitPetitionRequest) { r.Title = "Pothole" },
		"short description": func(r *domain.SubmitPetitionRequest) { r.Description = "Road is bad." },
		"missing state":     func(r *domain.SubmitPetitionRequest) { r.State = "  " },
		"missing district":  func(r *domain.SubmitPetitionRequest) { r.District = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newPetitionRepoFake()
			uc := NewSubmitPetitionUseCase(repo, newTestEngine(), nil, nil)
			req := validSubmission()
			mutate(&req)

			_, err := uc.Submit(context.Background(), req)
			if !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if len(repo.petitions) != 0 {
				t.Fatalf("repo must not be touched on invalid input")
			}
		})
	}
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	repo := newPetitionRepoFake()
	uc := NewSubmitPetitionUseCase(repo, newTestEngine(), &publisherFake{err: errors.New("nats down")}, nil)

	petition, err := uc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, ok := repo.petitions[petition.ID]; !ok {
		t.Fatalf("petition must be stored even when publishing fails")
	}
}

func TestSubmitFailsOnRepositoryError(t *testing.T) {
	repo := newPetitionRepoFake()
	repo.createErr = domain.WrapError(domain.ErrTemporary, "insert petition", errors.New("conn reset"))
	pub := &publisherFake{}
	uc := NewSubmitPetitionUseCase(repo, newTestEngine(), pub, nil)

	_, err := uc.Submit(context.Background(), validSubmission())
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event expected when the petition was not stored")
	}
}

func TestReclassifyAutomaticRefusesManualPetition(t *testing.T) {
	repo := newPetitionRepoFake()
	repo.petitions[5] = &domain.Petition{ID: 5, Title: "Broken road", ManuallyClassified: true, DepartmentID: 2}
	uc := NewSubmitPetitionUseCase(repo, newTestEngine(), nil, nil)

	_, err := uc.Reclassify(context.Background(), 5)
	if !domain.IsKind(err, domain.ErrAlreadyManual) {
		t.Fatalf("expected ErrAlreadyManual, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("manual classification must not be overwritten")
	}
}

func TestReclassifyAutomaticUpdatesPetition(t *testing.T) {
	repo := newPetitionRepoFake()
	repo.petitions[5] = &domain.Petition{ID: 5, Title: "Pothole on the road", Description: "deep pothole", DepartmentID: 7}
	pub := &publisherFake{}
	uc := NewSubmitPetitionUseCase(repo, newTestEngine(), pub, nil)

	petition, err := uc.Reclassify(context.Background(), 5)
	if err != nil {
		t.Fatalf("Reclassify() error = %v", err)
	}
	if petition.DepartmentID != 1 {
		t.Fatalf("expected Public Works, got %d", petition.DepartmentID)
	}
	if len(repo.saved) != 1 || len(pub.events) != 1 {
		t.Fatalf("expected one save and one event, got %d/%d", len(repo.saved), len(pub.events))
	}
}

func TestReadPetitionNotFound(t *testing.T) {
	uc := NewReadPetitionUseCase(newPetitionRepoFake())

	_, err := uc.GetByID(context.Background(), 42)
	if !domain.IsKind(err, domain.ErrPetitionNotFound) {
		t.Fatalf("expected ErrPetitionNotFound, got %v", err)
	}
	_, err = uc.ListReclassifications(context.Background(), 42)
	if !domain.IsKind(err, domain.ErrPetitionNotFound) {
		t.Fatalf("expected ErrPetitionNotFound, got %v", err)
	}
}
