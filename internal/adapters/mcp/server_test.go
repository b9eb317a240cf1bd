package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grievease/petition-triage/internal/core/domain"
)

type advisorFake struct {
	texts []domain.PetitionText
	topN  []int
	err   error
}

func (f *advisorFake) Preview(_ context.Context, text domain.PetitionText) (domain.ClassificationResult, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return domain.ClassificationResult{}, f.err
	}
	return domain.ClassificationResult{DepartmentID: 1, DepartmentName: "Public Works", UrgencyLevel: domain.UrgencyHigh, Confidence: 75}, nil
}

func (f *advisorFake) Suggest(_ context.Context, _ string, topN int) (domain.SuggestionSet, error) {
	f.topN = append(f.topN, topN)
	if f.err != nil {
		return domain.SuggestionSet{}, f.err
	}
	return domain.SuggestionSet{Method: "keyword_matching", Suggestions: []domain.Suggestion{{DepartmentID: 1}}}, nil
}

type catalogFake struct {
	filters []domain.CategoryFilter
}

func (f *catalogFake) Departments(context.Context) ([]domain.Department, error) {
	return []domain.Department{{ID: 1, Name: "Public Works"}, {ID: 2, Name: "Health Department"}}, nil
}

func (f *catalogFake) Categories(_ context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	f.filters = append(f.filters, filter)
	return []domain.Category{{ID: 6, Name: "Hospital Services", DepartmentID: 2}}, nil
}

func (f *catalogFake) Reload(context.Context) (domain.CatalogStatus, error) {
	return domain.CatalogStatus{}, nil
}

func (f *catalogFake) Status() domain.CatalogStatus {
	return domain.CatalogStatus{}
}

type readerFake struct{}

func (readerFake) GetByID(_ context.Context, id int64) (*domain.Petition, error) {
	if id != 7 {
		return nil, domain.WrapError(domain.ErrPetitionNotFound, "get petition", fmt.Errorf("id=%d", id))
	}
	return &domain.Petition{ID: 7, Title: "Broken streetlight"}, nil
}

func (readerFake) ListReclassifications(context.Context, int64) ([]domain.Reclassification, error) {
	return nil, nil
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestClassifyPetitionTool(t *testing.T) {
	advisor := &advisorFake{}
	s := NewServer(Services{Advisor: advisor, Catalog: &catalogFake{}}, nil)

	result, err := s.classifyPetition(context.Background(), callRequest("classify_petition", map[string]any{
		"title":       "Pothole",
		"description": "Deep pothole on the main road",
		"location":    "Ward 4",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var decoded domain.ClassificationResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	assert.Equal(t, "Public Works", decoded.DepartmentName)
	require.Len(t, advisor.texts, 1)
	assert.Equal(t, "Ward 4", advisor.texts[0].Location)
}

func TestClassifyPetitionToolRequiresDescription(t *testing.T) {
	advisor := &advisorFake{}
	s := NewServer(Services{Advisor: advisor, Catalog: &catalogFake{}}, nil)

	result, err := s.classifyPetition(context.Background(), callRequest("classify_petition", map[string]any{"title": "Pothole"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, advisor.texts)
}

func TestSuggestToolCapsTopN(t *testing.T) {
	advisor := &advisorFake{}
	s := NewServer(Services{Advisor: advisor, Catalog: &catalogFake{}}, nil)

	result, err := s.suggestClassification(context.Background(), callRequest("suggest_classification", map[string]any{
		"text":  "water leak",
		"top_n": float64(40),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, []int{maxSuggestions}, advisor.topN)
}

func TestToolErrorsHideInternalFailures(t *testing.T) {
	advisor := &advisorFake{err: errors.New("connection refused")}
	s := NewServer(Services{Advisor: advisor, Catalog: &catalogFake{}}, nil)

	result, err := s.suggestClassification(context.Background(), callRequest("suggest_classification", map[string]any{"text": "water"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "internal error", resultText(t, result))

	advisor.err = domain.WrapError(domain.ErrCatalogUnavailable, "suggest classification", errors.New("no catalog loaded"))
	result, err = s.suggestClassification(context.Background(), callRequest("suggest_classification", map[string]any{"text": "water"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "catalog unavailable")
}

func TestListCategoriesToolFilter(t *testing.T) {
	catalog := &catalogFake{}
	s := NewServer(Services{Advisor: &advisorFake{}, Catalog: catalog}, nil)

	_, err := s.listCategories(context.Background(), callRequest("list_categories", map[string]any{"department_id": float64(2)}))
	require.NoError(t, err)
	_, err = s.listCategories(context.Background(), callRequest("list_categories", map[string]any{}))
	require.NoError(t, err)

	require.Len(t, catalog.filters, 2)
	require.NotNil(t, catalog.filters[0].DepartmentID)
	assert.Equal(t, int64(2), *catalog.filters[0].DepartmentID)
	assert.Nil(t, catalog.filters[1].DepartmentID)
}

func TestGetPetitionTool(t *testing.T) {
	s := NewServer(Services{Advisor: &advisorFake{}, Catalog: &catalogFake{}, Reader: readerFake{}}, nil)

	result, err := s.getPetition(context.Background(), callRequest("get_petition", map[string]any{"petition_id": float64(7)}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Broken streetlight")

	result, err = s.getPetition(context.Background(), callRequest("get_petition", map[string]any{"petition_id": float64(8)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
