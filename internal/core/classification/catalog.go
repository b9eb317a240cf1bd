package classification

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/grievease/petition-triage/internal/core/domain"
)

const (
	categoryKeywordPoints = 15
	categoryNameBonus     = 20
)

// Catalog is an immutable snapshot of departments and categories.
type Catalog struct {
	departments []domain.Department
	categories  []domain.Category
	deptIndex   map[int64]int
	catIndex    map[int64]int
	fallback    bool
}

// NewCatalog validates and indexes a department/category snapshot. Category keywords
// are lowercased; every category must reference a known department.
func NewCatalog(departments []domain.Department, categories []domain.Category) (*Catalog, error) {
	if len(departments) == 0 {
		return nil, domain.WrapError(domain.ErrCatalogUnavailable, "build catalog", errors.New("no departments"))
	}
	c := &Catalog{
		departments: slices.Clone(departments),
		categories:  make([]domain.Category, 0, len(categories)),
		deptIndex:   make(map[int64]int, len(departments)),
		catIndex:    make(map[int64]int, len(categories)),
	}
	for i, dep := range c.departments {
		if _, ok := c.deptIndex[dep.ID]; ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "build catalog", fmt.Errorf("duplicate department id %d", dep.ID))
		}
		c.deptIndex[dep.ID] = i
	}
	for _, cat := range categories {
		if _, ok := c.deptIndex[cat.DepartmentID]; !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "build catalog",
				fmt.Errorf("category %d references unknown department %d", cat.ID, cat.DepartmentID))
		}
		if _, ok := c.catIndex[cat.ID]; ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "build catalog", fmt.Errorf("duplicate category id %d", cat.ID))
		}
		cat.Keywords = cleanKeywords(cat.Keywords)
		c.catIndex[cat.ID] = len(c.categories)
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

// FallbackCatalog is the minimal snapshot used when reference data cannot be loaded.
func FallbackCatalog() *Catalog {
	c, err := NewCatalog(
		[]domain.Department{
			{ID: 1, Name: "Public Works", Description: "General public works and infrastructure"},
			{ID: 2, Name: "Municipal Corporation", Description: "Municipal services and administration"},
		},
		FallbackCategories(),
	)
	if err != nil {
		panic(err)
	}
	c.fallback = true
	return c
}

// FallbackCategories are the two built-in categories, both under department 1.
func FallbackCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, Name: "General Inquiry", Code: "GENERAL", Description: "General complaints and inquiries", DepartmentID: 1, PriorityWeight: 1, Active: true},
		{ID: 2, Name: "Infrastructure", Code: "INFRA", Description: "Infrastructure related issues", DepartmentID: 1,
			Keywords: []string{"road", "water", "electricity"}, PriorityWeight: 1, Active: true},
	}
}

// IsFallback reports whether this snapshot is the built-in safety net.
func (c *Catalog) IsFallback() bool {
	return c.fallback
}

func (c *Catalog) Department(id int64) (domain.Department, bool) {
	i, ok := c.deptIndex[id]
	if !ok {
		return domain.Department{}, false
	}
	return c.departments[i], true
}

func (c *Catalog) Category(id int64) (domain.Category, bool) {
	i, ok := c.catIndex[id]
	if !ok {
		return domain.Category{}, false
	}
	return c.categories[i], true
}

func (c *Catalog) Departments() []domain.Department {
	return slices.Clone(c.departments)
}

// Categories lists categories in catalog order, optionally filtered.
func (c *Catalog) Categories(filter domain.CategoryFilter) []domain.Category {
	out := make([]domain.Category, 0, len(c.categories))
	for _, cat := range c.categories {
		if filter.ActiveOnly && !cat.Active {
			continue
		}
		if filter.DepartmentID != nil && cat.DepartmentID != *filter.DepartmentID {
			continue
		}
		cat.Keywords = slices.Clone(cat.Keywords)
		out = append(out, cat)
	}
	return out
}

func (c *Catalog) Len() (departments int, categories int) {
	return len(c.departments), len(c.categories)
}

// ScoreCategories scores the categories of one department against normalized text:
// 15 points per keyword hit plus 20 when the category name itself appears, capped at 100.
// Inactive categories still compete.
func (c *Catalog) ScoreCategories(text string, departmentID int64) ScoreTable {
	var table ScoreTable
	for _, cat := range c.categories {
		if cat.DepartmentID != departmentID {
			continue
		}
		matched := matchKeywords(text, cat.Keywords)
		score := len(matched) * categoryKeywordPoints
		if name := strings.ToLower(cat.Name); name != "" && strings.Contains(text, name) {
			score += categoryNameBonus
		}
		table = append(table, Score{ID: cat.ID, Score: clampScore(score), Matched: matched})
	}
	return table
}
