package domain

import "time"

type Department struct {
	ID          int64  `json:"department_id" yaml:"id"`
	Name        string `json:"department_name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// Category is a department-scoped sub-classification. Keywords carry equal weight.
type Category struct {
	ID             int64     `json:"category_id" yaml:"id"`
	Name           string    `json:"category_name" yaml:"name"`
	Code           string    `json:"category_code" yaml:"code"`
	Description    string    `json:"description,omitempty" yaml:"description"`
	DepartmentID   int64     `json:"department_id" yaml:"department_id"`
	Keywords       []string  `json:"keywords" yaml:"keywords"`
	PriorityWeight int       `json:"priority_weight" yaml:"priority_weight"`
	Active         bool      `json:"is_active" yaml:"active"`
	CreatedAt      time.Time `json:"created_at" yaml:"-"`
}

type CategoryFilter struct {
	DepartmentID *int64
	ActiveOnly   bool
}

// CatalogSnapshot is a full copy of the reference data, as cached and seeded.
type CatalogSnapshot struct {
	Departments []Department `json:"departments" yaml:"departments"`
	Categories  []Category   `json:"categories" yaml:"categories"`
	LoadedAt    time.Time    `json:"loaded_at" yaml:"-"`
}

type CatalogSourceKind string

const (
	CatalogFromDatabase CatalogSourceKind = "database"
	CatalogFromCache    CatalogSourceKind = "cache"
	CatalogFromFallback CatalogSourceKind = "fallback"
)

// CatalogStatus describes the snapshot the engine currently classifies with.
type CatalogStatus struct {
	Source      CatalogSourceKind `json:"source"`
	Departments int               `json:"departments"`
	Categories  int               `json:"categories"`
	LoadedAt    time.Time         `json:"loaded_at"`
}
