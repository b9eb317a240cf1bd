package usecase

import (
	"context"
	"testing"

	"github.com/grievease/petition-triage/internal/core/domain"
)

func petitionInRoadMaintenance() *domain.Petition {
	category := "Road Maintenance"
	return &domain.Petition{
		ID:                       9,
		Title:                    "Pothole on the road",
		DepartmentID:             1,
		Department:               "Public Works",
		CategoryID:               int64Ptr(1),
		Category:                 &category,
		UrgencyLevel:             domain.UrgencyMedium,
		ClassificationConfidence: 40,
	}
}

func TestOverrideCategoryMovesDepartment(t *testing.T) {
	repo := newPetitionRepoFake()
	repo.petitions[9] = petitionInRoadMaintenance()
	pub := &publisherFake{}
	uc := NewOverrideClassificationUseCase(repo, newTestEngine(), pub, nil)

	result, err := uc.Override(context.Background(), domain.ReclassificationRequest{
		PetitionID: 9,
		CategoryID: int64Ptr(6),
		OfficerID:  "officer-3",
		Note:       " belongs to the hospital ",
	})
	if err != nil {
		t.Fatalf("Override() error = %v", err)
	}

	if result.Confidence != 100 || !result.ManuallyClassified {
		t.Fatalf("override must be manual with full confidence, got %+v", result)
	}
	if result.DepartmentName == nil || *result.DepartmentName != "Health Department" {
		t.Fatalf("expected department derived from category, got %v", result.DepartmentName)
	}
	if len(repo.applied) != 1 {
		t.Fatalf("expected one applied reclassification, got %d", len(repo.applied))
	}
	rec := repo.applied[0]
	if rec.PreviousDepartmentID != 1 || *rec.PreviousCategoryID != 1 {
		t.Fatalf("unexpected previous classification %+v", rec)
	}
	if rec.NewDepartmentID != 2 || rec.NewCategoryID == nil || *rec.NewCategoryID != 6 {
		t.Fatalf("unexpected new classification %+v", rec)
	}
	if rec.Note != "belongs to the hospital" || rec.OfficerID != "officer-3" {
		t.Fatalf("unexpected audit fields %+v", rec)
	}
	if len(pub.events) != 1 || pub.events[0].Type != domain.EventPetitionReclassified || !pub.events[0].ManuallyClassified {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestOverrideDepartmentClearsCategory(t *testing.T) {
	repo := newPetitionRepoFake()
	repo.petitions[9] = petitionInRoadMaintenance()
	uc := NewOverrideClassificationUseCase(repo, newTestEngine(), nil, nil)

	result, err := uc.Override(context.Background(), domain.ReclassificationRequest{PetitionID: 9, DepartmentID: int64Ptr(7)})
	if err != nil {
		t.Fatalf("Override() error = %v", err)
	}
	if result.CategoryName != nil {
		t.Fatalf("no category was supplied, got %v", *result.CategoryName)
	}
	rec := repo.applied[0]
	if rec.NewDepartmentID != 7 || rec.NewCategoryID != nil {
		t.Fatalf("expected department 7 without category, got %+v", rec)
	}
}

func TestOverrideSameDepartmentKeepsCategory(t *testing.T) {
	repo := newPetitionRepoFake()
	repo.petitions[9] = petitionInRoadMaintenance()
	uc := NewOverrideClassificationUseCase(repo, newTestEngine(), nil, nil)

	if _, err := uc.Override(context.Background(), domain.ReclassificationRequest{PetitionID: 9, DepartmentID: int64Ptr(1)}); err != nil {
		t.Fatalf("Override() error = %v", err)
	}
	rec := repo.applied[0]
	if rec.NewCategoryID == nil || *rec.NewCategoryID != 1 {
		t.Fatalf("category must survive a same-department override, got %+v", rec)
	}
}

func TestOverrideRejectsInvalidTargets(t *testing.T) {
	tests := []struct {
		name string
		req  domain.ReclassificationRequest
		kind error
	}{
		{name: "nothing supplied", req: domain.ReclassificationRequest{PetitionID: 9}, kind: domain.ErrInvalidInput},
		{name: "bad petition id", req: domain.ReclassificationRequest{DepartmentID: int64Ptr(1)}, kind: domain.ErrInvalidInput},
		{name: "unknown department", req: domain.ReclassificationRequest{PetitionID: 9, DepartmentID: int64Ptr(99)}, kind: domain.ErrInvalidReclassificationTarget},
		{name: "unknown category", req: domain.ReclassificationRequest{PetitionID: 9, CategoryID: int64Ptr(99)}, kind: domain.ErrInvalidReclassificationTarget},
		{name: "mismatched pair", req: domain.ReclassificationRequest{PetitionID: 9, DepartmentID: int64Ptr(2), CategoryID: int64Ptr(1)}, kind: domain.ErrInvalidReclassificationTarget},
		{name: "unknown petition", req: domain.ReclassificationRequest{PetitionID: 77, DepartmentID: int64Ptr(1)}, kind: domain.ErrPetitionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newPetitionRepoFake()
			repo.petitions[9] = petitionInRoadMaintenance()
			uc := NewOverrideClassificationUseCase(repo, newTestEngine(), nil, nil)

			_, err := uc.Override(context.Background(), tt.req)
			if !domain.IsKind(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if len(repo.applied) != 0 {
				t.Fatalf("nothing must be applied on rejection")
			}
		})
	}
}
