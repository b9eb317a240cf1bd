package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grievease/petition-triage/internal/core/domain"
)

func TestFallbackCatalog(t *testing.T) {
	c := FallbackCatalog()

	assert.True(t, c.IsFallback())
	deps, cats := c.Len()
	assert.Equal(t, 2, deps)
	assert.Equal(t, 2, cats)

	dep, ok := c.Department(2)
	require.True(t, ok)
	assert.Equal(t, "Municipal Corporation", dep.Name)

	cat, ok := c.Category(2)
	require.True(t, ok)
	assert.Equal(t, "INFRA", cat.Code)
	assert.Equal(t, int64(1), cat.DepartmentID)
}

func TestNewCatalogValidation(t *testing.T) {
	deps := []domain.Department{{ID: 1, Name: "Public Works"}}

	_, err := NewCatalog(nil, nil)
	assert.True(t, domain.IsKind(err, domain.ErrCatalogUnavailable))

	_, err = NewCatalog(append(deps, domain.Department{ID: 1, Name: "Again"}), nil)
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))

	_, err = NewCatalog(deps, []domain.Category{{ID: 1, DepartmentID: 4}})
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))

	_, err = NewCatalog(deps, []domain.Category{{ID: 1, DepartmentID: 1}, {ID: 1, DepartmentID: 1}})
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))

	c, err := NewCatalog(deps, []domain.Category{{ID: 1, DepartmentID: 1, Keywords: []string{" Road "}}})
	require.NoError(t, err)
	assert.False(t, c.IsFallback())
	cat, _ := c.Category(1)
	assert.Equal(t, []string{"road"}, cat.Keywords)
}

func TestCatalogCategoriesFilter(t *testing.T) {
	c := testCatalog(t)
	publicWorks := int64(1)

	all := c.Categories(domain.CategoryFilter{})
	assert.Len(t, all, 5)

	active := c.Categories(domain.CategoryFilter{ActiveOnly: true})
	assert.Len(t, active, 4)

	scoped := c.Categories(domain.CategoryFilter{ActiveOnly: true, DepartmentID: &publicWorks})
	require.Len(t, scoped, 2)
	assert.Equal(t, "Road Maintenance", scoped[0].Name)
	assert.Equal(t, "Water Supply", scoped[1].Name)

	scoped[0].Keywords[0] = "mutated"
	again, _ := c.Category(11)
	assert.Equal(t, "road", again.Keywords[0])
}

func TestScoreCategories(t *testing.T) {
	c := testCatalog(t)

	table := c.ScoreCategories(Normalize("Street lighting is dark", "bulb gone", ""), 1)
	require.Len(t, table, 3)
	best, ok := table.Best()
	require.True(t, ok)
	// Inactive categories still compete: light, dark, bulb (45) plus the name bonus (20).
	assert.Equal(t, int64(13), best.ID)
	assert.Equal(t, 65, best.Score)

	assert.Empty(t, c.ScoreCategories("anything", 3))
}
