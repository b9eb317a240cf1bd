package seed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	snapshot, err := Load()
	require.NoError(t, err)

	assert.Len(t, snapshot.Departments, 10)
	assert.Len(t, snapshot.Categories, 50)
	assert.Equal(t, "Public Works", snapshot.Departments[0].Name)

	perDepartment := map[int64]int{}
	for _, cat := range snapshot.Categories {
		assert.NotEmpty(t, cat.Keywords, "category %s has no keywords", cat.Code)
		assert.True(t, cat.Active)
		perDepartment[cat.DepartmentID]++
	}
	for id := int64(1); id <= 10; id++ {
		assert.Equal(t, 5, perDepartment[id], "department %d", id)
	}
}

func TestDecodeRejectsUnknownDepartment(t *testing.T) {
	doc := `
departments:
  - id: 1
    name: Public Works
categories:
  - id: 1
    name: Roads
    code: ROADS
    department_id: 9
    keywords: [road]
`
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("departments: []\nowner: ops\n"))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))
}

func TestEncodeDecodeKeepsKeywords(t *testing.T) {
	snapshot, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snapshot))

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Categories[5].Keywords, again.Categories[5].Keywords)
	assert.Equal(t, snapshot.Departments, again.Departments)
}
