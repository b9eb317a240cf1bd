// Package seed ships the reference catalog applied to an empty database.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/grievease/petition-triage/internal/core/classification"
	"github.com/grievease/petition-triage/internal/core/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Load returns the embedded ten-department catalog, validated the same way the engine does.
func Load() (domain.CatalogSnapshot, error) {
	return Decode(bytes.NewReader(catalogYAML))
}

// Decode reads a catalog snapshot in the seed YAML layout.
func Decode(r io.Reader) (domain.CatalogSnapshot, error) {
	var snapshot domain.CatalogSnapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snapshot); err != nil {
		return domain.CatalogSnapshot{}, domain.WrapError(domain.ErrInvalidInput, "decode catalog yaml", err)
	}
	if _, err := classification.NewCatalog(snapshot.Departments, snapshot.Categories); err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("validate catalog yaml: %w", err)
	}
	return snapshot, nil
}

// Encode writes a snapshot in the layout Decode accepts.
func Encode(w io.Writer, snapshot domain.CatalogSnapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("encode catalog yaml: %w", err)
	}
	return enc.Close()
}
