package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/infrastructure/seed"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, err := run(t, "", "classify", "--title", "Hospital emergency", "The hospital has no doctor and a patient is dying")
	require.NoError(t, err)

	var result domain.ClassificationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result.DepartmentName)
	assert.NotEmpty(t, result.UrgencyLevel)
	assert.NotEmpty(t, result.Reasoning)
}

func TestClassifyCommandReadsStdin(t *testing.T) {
	out, err := run(t, "water pipe leaking on the street\n", "classify")
	require.NoError(t, err)
	assert.Contains(t, out, `"department"`)
}

func TestClassifyCommandRequiresText(t *testing.T) {
	_, err := run(t, "   ", "classify")
	require.Error(t, err)
}

func TestSuggestCommandLimitsResults(t *testing.T) {
	out, err := run(t, "", "suggest", "--top", "2", "garbage on the road and water leak near the school")
	require.NoError(t, err)

	var set domain.SuggestionSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	assert.LessOrEqual(t, len(set.Suggestions), 2)
	assert.Equal(t, "keyword_matching", set.Method)
}

func TestCatalogExportYAMLRoundTrip(t *testing.T) {
	out, err := run(t, "", "catalog", "export")
	require.NoError(t, err)

	decoded, err := seed.Decode(strings.NewReader(out))
	require.NoError(t, err)
	bundled, err := seed.Load()
	require.NoError(t, err)
	assert.Len(t, decoded.Departments, len(bundled.Departments))
	assert.Len(t, decoded.Categories, len(bundled.Categories))
}

func TestCatalogExportXLSXThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	_, err := run(t, "", "catalog", "export", "-o", path)
	require.NoError(t, err)

	bundled, err := seed.Load()
	require.NoError(t, err)

	out, err := run(t, "", "catalog", "validate", path)
	require.NoError(t, err)
	want := fmt.Sprintf("ok: %d departments, %d categories\n", len(bundled.Departments), len(bundled.Categories))
	assert.Equal(t, want, out)
}

func TestCatalogFormat(t *testing.T) {
	assert.Equal(t, "yaml", catalogFormat("", ""))
	assert.Equal(t, "xlsx", catalogFormat("", "out/catalog.XLSX"))
	assert.Equal(t, "yaml", catalogFormat("YAML", "catalog.xlsx"))
}
