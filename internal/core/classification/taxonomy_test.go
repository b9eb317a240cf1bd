package classification

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grievease/petition-triage/internal/core/domain"
)

func TestScoreDepartmentsRoadPothole(t *testing.T) {
	table := DefaultTaxonomy().ScoreDepartments(Normalize("Pothole on the road", "", ""))

	best, ok := table.Best()
	require.True(t, ok)
	assert.Equal(t, int64(1), best.ID)
	assert.Equal(t, 30, best.Score)
	assert.Equal(t, []string{"road", "pothole"}, best.Matched)
}

func TestScoreDepartmentsForcesFallback(t *testing.T) {
	table := DefaultTaxonomy().ScoreDepartments("xyz")

	require.Len(t, table, 10)
	for _, s := range table {
		if s.ID == 1 {
			assert.Equal(t, FallbackScore, s.Score)
			assert.Empty(t, s.Matched)
			continue
		}
		assert.Zero(t, s.Score)
	}
}

func TestScoreDepartmentsCapsAt100(t *testing.T) {
	tax := DefaultTaxonomy()
	var text string
	for _, kw := range tax.Departments[0].Keywords {
		text += kw + " "
	}
	s, ok := tax.ScoreDepartments(text).Lookup(1)
	require.True(t, ok)
	assert.Equal(t, MaxScore, s.Score)
}

func TestScoreTableRankedIsStable(t *testing.T) {
	table := ScoreTable{{ID: 1, Score: 10}, {ID: 2, Score: 30}, {ID: 3, Score: 10}, {ID: 4, Score: 30}}
	ranked := table.Ranked()

	var ids []int64
	for _, s := range ranked {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int64{2, 4, 1, 3}, ids)
	assert.Equal(t, int64(1), table[0].ID, "Ranked must not reorder the receiver")

	best, _ := table.Best()
	assert.Equal(t, int64(2), best.ID)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "broken pipe water everywhere ", Normalize("Broken PIPE", "Water everywhere", ""))
	assert.Equal(t, "a b c", Normalize("A", "B", "C"))
	once := Normalize("Road", "Pothole", "Ward 5")
	assert.Equal(t, once, Normalize(once, "", "")[:len(once)])
}

func TestParseTaxonomy(t *testing.T) {
	data := []byte(`
fallback_department_id: 3
departments:
  - id: 3
    name: Education
    keywords: [" School ", TEACHER, ""]
  - id: 1
    name: Public Works
    keywords: [road]
urgency:
  critical: [Fire]
  low: [idea]
`)
	tax, err := ParseTaxonomy(data)
	require.NoError(t, err)

	assert.Equal(t, int64(3), tax.FallbackDepartmentID)
	require.Len(t, tax.Departments, 2)
	assert.Equal(t, int64(1), tax.Departments[0].ID)
	assert.Equal(t, []string{"school", "teacher"}, tax.Departments[1].Keywords)
	assert.Equal(t, []string{"fire"}, tax.Urgency.Critical)
	assert.Equal(t, domain.UrgencyCritical, tax.EstimateUrgency("house fire"))
}

func TestParseTaxonomyRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"no departments":     "departments: []",
		"duplicate id":       "departments: [{id: 1, name: a, keywords: [x]}, {id: 1, name: b, keywords: [y]}]",
		"no keywords":        "departments: [{id: 1, name: a, keywords: []}]",
		"unknown fallback":   "fallback_department_id: 9\ndepartments: [{id: 1, name: a, keywords: [x]}]",
		"non positive id":    "departments: [{id: 0, name: a, keywords: [x]}]",
		"malformed document": "departments: {",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTaxonomy([]byte(doc))
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))
		})
	}
}

func TestLoadTaxonomyFileRoundTrip(t *testing.T) {
	data, err := DefaultTaxonomy().EncodeYAML()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadTaxonomyFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTaxonomy(), loaded)

	_, err = LoadTaxonomyFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
