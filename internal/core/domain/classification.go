package domain

const (
	// ManualConfidence is the confidence recorded for officer overrides.
	ManualConfidence = 100

	// GeneralCategoryName labels results that carry no category.
	GeneralCategoryName = "General"
)

// PetitionText is the free text the classifier analyses.
type PetitionText struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
}

// ClassificationResult is written onto the petition record. CategoryID is nil when no category
// under the chosen department scored above zero.
type ClassificationResult struct {
	DepartmentID         int64        `json:"department_id"`
	DepartmentName       string       `json:"department"`
	CategoryID           *int64       `json:"category_id"`
	CategoryName         *string      `json:"category"`
	UrgencyLevel         UrgencyLevel `json:"urgency_level"`
	Confidence           int          `json:"confidence"`
	DepartmentConfidence int          `json:"department_confidence"`
	CategoryConfidence   int          `json:"category_confidence"`
	Reasoning            string       `json:"reasoning"`
	ManuallyClassified   bool         `json:"manually_classified"`
	Degraded             bool         `json:"degraded"`
}

func (r ClassificationResult) HasCategory() bool {
	return r.CategoryID != nil
}

type ReclassificationRequest struct {
	PetitionID   int64  `json:"petition_id"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	CategoryID   *int64 `json:"category_id,omitempty"`
	OfficerID    string `json:"officer_id,omitempty"`
	Note         string `json:"note,omitempty"`
}

type ReclassificationResult struct {
	PetitionID         int64   `json:"petition_id"`
	DepartmentID       *int64  `json:"department_id,omitempty"`
	DepartmentName     *string `json:"new_department,omitempty"`
	CategoryID         *int64  `json:"category_id,omitempty"`
	CategoryName       *string `json:"new_category,omitempty"`
	Confidence         int     `json:"confidence"`
	ManuallyClassified bool    `json:"manually_classified"`
}

type Suggestion struct {
	DepartmentID       int64  `json:"department_id"`
	DepartmentName     string `json:"department_name"`
	CategoryID         *int64 `json:"category_id"`
	CategoryName       string `json:"category_name"`
	Confidence         int    `json:"confidence"`
	CategoryConfidence int    `json:"category_confidence"`
	Reasoning          string `json:"reasoning"`
}

type SuggestionSet struct {
	Suggestions  []Suggestion `json:"suggestions"`
	TextAnalyzed int          `json:"text_analyzed"`
	Method       string       `json:"classification_method"`
}
