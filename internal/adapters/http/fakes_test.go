package httpadapter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/grievease/petition-triage/internal/config"
	"github.com/grievease/petition-triage/internal/core/domain"
)

type submitterFake struct {
	submitted  []domain.SubmitPetitionRequest
	submitErr  error
	reclassErr error
}

func (f *submitterFake) Submit(_ context.Context, req domain.SubmitPetitionRequest) (*domain.Petition, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, req)
	category, categoryID := "Road Maintenance", int64(1)
	return &domain.Petition{
		ID:                       101,
		Title:                    req.Title,
		Description:              req.Description,
		State:                    req.State,
		District:                 req.District,
		Status:                   domain.PetitionSubmitted,
		DepartmentID:             1,
		Department:               "Public Works",
		CategoryID:               &categoryID,
		Category:                 &category,
		UrgencyLevel:             domain.UrgencyHigh,
		ClassificationConfidence: 80,
	}, nil
}

func (f *submitterFake) Reclassify(_ context.Context, petitionID int64) (*domain.Petition, error) {
	if f.reclassErr != nil {
		return nil, f.reclassErr
	}
	return &domain.Petition{ID: petitionID, DepartmentID: 1, Department: "Public Works", UrgencyLevel: domain.UrgencyMedium}, nil
}

type reclassifierFake struct {
	requests []domain.ReclassificationRequest
	err      error
}

func (f *reclassifierFake) Override(_ context.Context, req domain.ReclassificationRequest) (*domain.ReclassificationResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ReclassificationResult{
		PetitionID:         req.PetitionID,
		DepartmentID:       req.DepartmentID,
		CategoryID:         req.CategoryID,
		Confidence:         domain.ManualConfidence,
		ManuallyClassified: true,
	}, nil
}

type readerFake struct {
	petitions map[int64]*domain.Petition
	history   []domain.Reclassification
}

func (f *readerFake) GetByID(_ context.Context, id int64) (*domain.Petition, error) {
	p, ok := f.petitions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrPetitionNotFound, "get petition", fmt.Errorf("id=%d", id))
	}
	return p, nil
}

func (f *readerFake) ListReclassifications(_ context.Context, petitionID int64) ([]domain.Reclassification, error) {
	if _, ok := f.petitions[petitionID]; !ok {
		return nil, domain.WrapError(domain.ErrPetitionNotFound, "list reclassifications", fmt.Errorf("id=%d", petitionID))
	}
	return f.history, nil
}

type advisorFake struct {
	previews []domain.PetitionText
	err      error
}

func (f *advisorFake) Preview(_ context.Context, text domain.PetitionText) (domain.ClassificationResult, error) {
	if f.err != nil {
		return domain.ClassificationResult{}, f.err
	}
	f.previews = append(f.previews, text)
	return domain.ClassificationResult{
		DepartmentID:   2,
		DepartmentName: "Health Department",
		UrgencyLevel:   domain.UrgencyCritical,
		Confidence:     70,
	}, nil
}

func (f *advisorFake) Suggest(_ context.Context, text string, topN int) (domain.SuggestionSet, error) {
	if f.err != nil {
		return domain.SuggestionSet{}, f.err
	}
	return domain.SuggestionSet{
		Suggestions:  []domain.Suggestion{{DepartmentID: 1, DepartmentName: "Public Works", Confidence: 60}},
		TextAnalyzed: topN,
		Method:       "keyword_matching",
	}, nil
}

type catalogFake struct {
	status      domain.CatalogStatus
	filters     []domain.CategoryFilter
	reloadErr   error
	reloadCalls int
}

func (f *catalogFake) Departments(context.Context) ([]domain.Department, error) {
	return []domain.Department{{ID: 1, Name: "Public Works"}}, nil
}

func (f *catalogFake) Categories(_ context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	f.filters = append(f.filters, filter)
	return []domain.Category{{ID: 1, Name: "Road Maintenance", DepartmentID: 1, Active: true}}, nil
}

func (f *catalogFake) Reload(context.Context) (domain.CatalogStatus, error) {
	f.reloadCalls++
	if f.reloadErr != nil {
		return domain.CatalogStatus{}, f.reloadErr
	}
	return f.status, nil
}

func (f *catalogFake) Status() domain.CatalogStatus {
	return f.status
}

type catalogAdminFake struct{}

func (catalogAdminFake) Import(context.Context, domain.CatalogSnapshot) (domain.CatalogStatus, error) {
	return domain.CatalogStatus{}, nil
}

func (catalogAdminFake) Seed(context.Context, domain.CatalogSnapshot) (bool, error) {
	return false, nil
}

func (catalogAdminFake) Snapshot(context.Context) (domain.CatalogSnapshot, error) {
	return domain.CatalogSnapshot{Departments: []domain.Department{{ID: 1, Name: "Public Works"}}}, nil
}

type analyticsFake struct {
	exportErr error
}

func (f *analyticsFake) UrgencyDistribution(context.Context) ([]domain.UrgencyCount, error) {
	return []domain.UrgencyCount{{Urgency: domain.UrgencyHigh, Count: 3}}, nil
}

func (f *analyticsFake) DepartmentStats(context.Context) ([]domain.DepartmentStat, error) {
	return nil, nil
}

func (f *analyticsFake) Export(_ context.Context, w io.Writer) error {
	if f.exportErr != nil {
		return f.exportErr
	}
	_, err := w.Write([]byte("PK-xlsx"))
	return err
}

func (f *analyticsFake) Archive(context.Context) (string, error) {
	return "analytics_test.xlsx", nil
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(_ context.Context, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	return f.text, nil
}

type testServices struct {
	submitter    *submitterFake
	reclassifier *reclassifierFake
	reader       *readerFake
	advisor      *advisorFake
	catalog      *catalogFake
	analytics    *analyticsFake
	extractor    *extractorFake
}

func newTestServices() *testServices {
	return &testServices{
		submitter:    &submitterFake{},
		reclassifier: &reclassifierFake{},
		reader: &readerFake{petitions: map[int64]*domain.Petition{
			7: {ID: 7, Title: "Broken streetlight", DepartmentID: 1, Department: "Public Works"},
		}},
		advisor: &advisorFake{},
		catalog: &catalogFake{status: domain.CatalogStatus{
			Source:      domain.CatalogFromDatabase,
			Departments: 10,
			Categories:  50,
			LoadedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}},
		analytics: &analyticsFake{},
		extractor: &extractorFake{text: "The hospital has no doctor on duty."},
	}
}

func (s *testServices) services() Services {
	return Services{
		Submitter:    s.submitter,
		Reclassifier: s.reclassifier,
		Reader:       s.reader,
		Advisor:      s.advisor,
		Catalog:      s.catalog,
		CatalogAdmin: catalogAdminFake{},
		Analytics:    s.analytics,
		Extractor:    s.extractor,
	}
}

func testConfig() config.Config {
	return config.Config{LetterMaxBytes: 1 << 20}
}
