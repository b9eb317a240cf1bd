package domain

import "time"

type PetitionStatus string

const (
	PetitionSubmitted   PetitionStatus = "submitted"
	PetitionUnderReview PetitionStatus = "under_review"
	PetitionInProgress  PetitionStatus = "in_progress"
	PetitionResolved    PetitionStatus = "resolved"
	PetitionEscalated   PetitionStatus = "escalated"
	PetitionRejected    PetitionStatus = "rejected"
)

// Petition is owned by the intake workflow; classification only writes the Department*,
// Category*, UrgencyLevel, ClassificationConfidence and ManuallyClassified fields.
type Petition struct {
	ID               int64          `json:"petition_id"`
	CitizenID        string         `json:"citizen_id"`
	Title            string         `json:"title"`
	ShortDescription string         `json:"short_description,omitempty"`
	Description      string         `json:"description"`
	State            string         `json:"state"`
	District         string         `json:"district"`
	Taluk            string         `json:"taluk,omitempty"`
	Location         string         `json:"location,omitempty"`
	Status           PetitionStatus `json:"status"`
	IsPublic         bool           `json:"is_public"`

	DepartmentID             int64        `json:"department_id"`
	Department               string       `json:"department"`
	CategoryID               *int64       `json:"category_id"`
	Category                 *string      `json:"category"`
	UrgencyLevel             UrgencyLevel `json:"urgency_level"`
	ClassificationConfidence int          `json:"classification_confidence"`
	ManuallyClassified       bool         `json:"manually_classified"`

	SubmittedAt time.Time  `json:"submitted_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (p *Petition) Text() PetitionText {
	return PetitionText{Title: p.Title, Description: p.Description, Location: p.Location}
}

// ApplyClassification copies an automatic result onto the petition. Manual classifications win.
func (p *Petition) ApplyClassification(result ClassificationResult) bool {
	if p.ManuallyClassified {
		return false
	}
	p.DepartmentID = result.DepartmentID
	p.Department = result.DepartmentName
	p.CategoryID = result.CategoryID
	p.Category = result.CategoryName
	p.UrgencyLevel = result.UrgencyLevel
	p.ClassificationConfidence = result.Confidence
	return true
}

// Reclassification is one officer override in the petition's audit trail.
type Reclassification struct {
	ID                   int64     `json:"id"`
	PetitionID           int64     `json:"petition_id"`
	PreviousDepartmentID int64     `json:"previous_department_id"`
	PreviousCategoryID   *int64    `json:"previous_category_id"`
	NewDepartmentID      int64     `json:"new_department_id"`
	NewDepartment        string    `json:"new_department"`
	NewCategoryID        *int64    `json:"new_category_id"`
	NewCategory          *string   `json:"new_category"`
	OfficerID            string    `json:"officer_id,omitempty"`
	Note                 string    `json:"note,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// SubmitPetitionRequest carries citizen input for a new petition.
type SubmitPetitionRequest struct {
	CitizenID        string `json:"citizen_id"`
	Title            string `json:"title"`
	ShortDescription string `json:"short_description,omitempty"`
	Description      string `json:"description"`
	State            string `json:"state"`
	District         string `json:"district"`
	Taluk            string `json:"taluk,omitempty"`
	Location         string `json:"location,omitempty"`
	IsPublic         bool   `json:"is_public"`
}
