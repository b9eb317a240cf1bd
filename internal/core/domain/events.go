package domain

import "time"

type PetitionEventType string

const (
	EventPetitionClassified   PetitionEventType = "petition.classified"
	EventPetitionReclassified PetitionEventType = "petition.reclassified"
)

// PetitionEvent is published after a classification is persisted.
type PetitionEvent struct {
	ID                 string            `json:"id"`
	Type               PetitionEventType `json:"type"`
	PetitionID         int64             `json:"petition_id"`
	Title              string            `json:"title"`
	DepartmentID       int64             `json:"department_id"`
	Department         string            `json:"department"`
	CategoryID         *int64            `json:"category_id,omitempty"`
	Category           *string           `json:"category,omitempty"`
	UrgencyLevel       UrgencyLevel      `json:"urgency_level"`
	Confidence         int               `json:"confidence"`
	ManuallyClassified bool              `json:"manually_classified"`
	OccurredAt         time.Time         `json:"occurred_at"`
}
