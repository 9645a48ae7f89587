// Package classifications implements document categorization for case
// documents: the engine that scores text against the arbitration category
// hierarchy, persistence of its results, and human validation of them.
package classifications

import (
	"time"

	"github.com/google/uuid"
)

// Classification is the stored categorization of a document. Re-running
// classification overwrites it.
type Classification struct {
	ID             uuid.UUID          `json:"id"`
	DocumentID     uuid.UUID          `json:"document_id"`
	CaseID         uuid.UUID          `json:"case_id"`
	Categories     []string           `json:"categories"`
	Scores         map[string]float64 `json:"scores"`
	RequiresReview bool               `json:"requires_review"`
	ReviewReason   *string            `json:"review_reason"`
	Metadata       Metadata           `json:"metadata"`
	ValidatedBy    *string            `json:"validated_by"`
	ValidatedAt    *time.Time         `json:"validated_at"`
	ClassifiedAt   time.Time          `json:"classified_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ValidateCommand confirms the categories of a classification as they are.
type ValidateCommand struct {
	ValidatedBy string `json:"validated_by" validate:"required"`
}

// UpdateCommand replaces the categories of a classification with a human
// decision. The update also counts as validation by UpdatedBy.
type UpdateCommand struct {
	Categories []string `json:"categories" validate:"required,dive,required"`
	UpdatedBy  string   `json:"updated_by" validate:"required"`
}

// BatchCommand requests classification of every document in a case.
type BatchCommand struct {
	CaseID uuid.UUID `json:"case_id" validate:"required"`
}

// BatchItem reports the outcome for one document of a case-wide run.
type BatchItem struct {
	DocumentID     uuid.UUID       `json:"document_id"`
	Classification *Classification `json:"classification,omitempty"`
	Error          string          `json:"error,omitempty"`
}
