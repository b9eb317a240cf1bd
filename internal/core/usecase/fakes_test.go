package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/grievease/petition-triage/internal/core/classification"
	"github.com/grievease/petition-triage/internal/core/domain"
)

type petitionRepoFake struct {
	petitions map[int64]*domain.Petition
	nextID    int64
	createErr error
	saveErr   error
	applyErr  error

	saved    []domain.ClassificationResult
	applied  []domain.Reclassification
	history  []domain.Reclassification
	urgency  []domain.UrgencyCount
	depStats []domain.DepartmentStat
	statsErr error
}

func newPetitionRepoFake() *petitionRepoFake {
	return &petitionRepoFake{petitions: map[int64]*domain.Petition{}, nextID: 100}
}

func (f *petitionRepoFake) Create(_ context.Context, p *domain.Petition) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = f.nextID
	copyPetition := *p
	f.petitions[p.ID] = &copyPetition
	return nil
}

func (f *petitionRepoFake) GetByID(_ context.Context, id int64) (*domain.Petition, error) {
	p, ok := f.petitions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrPetitionNotFound, "get petition", fmt.Errorf("id=%d", id))
	}
	copyPetition := *p
	return &copyPetition, nil
}

func (f *petitionRepoFake) SaveClassification(_ context.Context, id int64, result domain.ClassificationResult) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, result)
	if p, ok := f.petitions[id]; ok {
		p.ApplyClassification(result)
	}
	return nil
}

func (f *petitionRepoFake) ApplyReclassification(_ context.Context, rec *domain.Reclassification) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, *rec)
	return nil
}

func (f *petitionRepoFake) ListReclassifications(_ context.Context, petitionID int64) ([]domain.Reclassification, error) {
	var out []domain.Reclassification
	for _, r := range f.history {
		if r.PetitionID == petitionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *petitionRepoFake) UrgencyDistribution(context.Context) ([]domain.UrgencyCount, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.urgency, nil
}

func (f *petitionRepoFake) DepartmentStats(context.Context) ([]domain.DepartmentStat, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.depStats, nil
}

type publisherFake struct {
	events []domain.PetitionEvent
	err    error
}

func (f *publisherFake) PublishPetitionEvent(_ context.Context, event domain.PetitionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type catalogSourceFake struct {
	departments []domain.Department
	categories  []domain.Category
	err         error
}

func (f *catalogSourceFake) ListDepartments(context.Context) ([]domain.Department, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.departments, nil
}

func (f *catalogSourceFake) ListCategories(context.Context, domain.CategoryFilter) ([]domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

type catalogCacheFake struct {
	snapshot *domain.CatalogSnapshot
	loadErr  error
	stored   []domain.CatalogSnapshot
}

func (f *catalogCacheFake) LoadCatalog(context.Context) (*domain.CatalogSnapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.snapshot, nil
}

func (f *catalogCacheFake) StoreCatalog(_ context.Context, snapshot domain.CatalogSnapshot) error {
	f.stored = append(f.stored, snapshot)
	return nil
}

type catalogObserverFake struct {
	sources []domain.CatalogSourceKind
	errs    []error
}

func (f *catalogObserverFake) ObserveCatalogLoad(source domain.CatalogSourceKind, err error) {
	f.sources = append(f.sources, source)
	f.errs = append(f.errs, err)
}

type notifierFake struct {
	events []domain.PetitionEvent
	err    error
}

func (f *notifierFake) NotifyCritical(_ context.Context, event domain.PetitionEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type graphFake struct {
	events []domain.PetitionEvent
	err    error
}

func (f *graphFake) ProjectPetition(_ context.Context, event domain.PetitionEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type rendererFake struct {
	report domain.AnalyticsReport
	err    error
}

func (f *rendererFake) RenderAnalytics(report domain.AnalyticsReport, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	f.report = report
	_, err := w.Write([]byte("xlsx"))
	return err
}

type reportStorageFake struct {
	key  string
	body string
	err  error
}

func (f *reportStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.key = key
	f.body = string(raw)
	return nil
}

func (f *reportStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), errors.New("not implemented")
}

func seededCatalog() *classification.Catalog {
	catalog, err := classification.NewCatalog(
		[]domain.Department{
			{ID: 1, Name: "Public Works"},
			{ID: 2, Name: "Health Department"},
			{ID: 7, Name: "Municipal Corporation"},
		},
		[]domain.Category{
			{ID: 1, Name: "Road Maintenance", DepartmentID: 1, Keywords: []string{"road", "pothole", "street"}, Active: true},
			{ID: 2, Name: "Water Supply", DepartmentID: 1, Keywords: []string{"water", "pipe", "leak"}, Active: true},
			{ID: 6, Name: "Hospital Services", DepartmentID: 2, Keywords: []string{"hospital", "doctor"}, Active: true},
			{ID: 34, Name: "Parks and Recreation", DepartmentID: 7, Keywords: []string{"park", "garden"}, Active: false},
		},
	)
	if err != nil {
		panic(err)
	}
	return catalog
}

func newTestEngine() *classification.Engine {
	return classification.NewEngine(seededCatalog(), classification.WithJitter(classification.NoJitter{}))
}

func int64Ptr(v int64) *int64 { return &v }
