// Package awards implements award drafting and review: aggregation of a
// case's analysed documents into section buckets, rendering of the six award
// sections, and the review workflow that takes an award from draft to final.
package awards

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/templates"
)

// Status is the lifecycle state of an award.
type Status string

// Award statuses. StatusFinal is terminal.
const (
	StatusDraft             Status = "draft"
	StatusUnderReview       Status = "under_review"
	StatusApproved          Status = "approved"
	StatusRevisionRequested Status = "revision_requested"
	StatusFinal             Status = "final"
)

// SectionStatus is the lifecycle state of a single award section.
type SectionStatus string

// Section statuses.
const (
	SectionDraft         SectionStatus = "draft"
	SectionUnderReview   SectionStatus = "under_review"
	SectionNeedsRevision SectionStatus = "needs_revision"
	SectionApproved      SectionStatus = "approved"
)

// ReviewStatus is a reviewer's verdict.
type ReviewStatus string

// Review verdicts.
const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Award is the adjudicated document of a case. ApprovedBy and FinalizedAt
// are set if and only if Status is StatusFinal.
type Award struct {
	ID          uuid.UUID  `json:"id"`
	CaseID      uuid.UUID  `json:"case_id"`
	Title       string     `json:"title"`
	Version     int        `json:"version"`
	Status      Status     `json:"status"`
	CreatedBy   string     `json:"created_by"`
	ApprovedBy  *string    `json:"approved_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	FinalizedAt *time.Time `json:"finalized_at"`
	Sections    []Section  `json:"sections,omitempty"`
	Reviews     []Review   `json:"reviews,omitempty"`
}

// Section returns the section with the given id.
func (a *Award) Section(id uuid.UUID) (*Section, bool) {
	for i := range a.Sections {
		if a.Sections[i].ID == id {
			return &a.Sections[i], true
		}
	}
	return nil, false
}

// Review returns the review held by reviewerID.
func (a *Award) Review(reviewerID string) (*Review, bool) {
	for i := range a.Reviews {
		if a.Reviews[i].ReviewerID == reviewerID {
			return &a.Reviews[i], true
		}
	}
	return nil, false
}

// Section is an ordered part of an award. Order is unique within the award
// and follows templates.Keys.
type Section struct {
	ID          uuid.UUID       `json:"id"`
	AwardID     uuid.UUID       `json:"award_id"`
	Key         templates.Key   `json:"section_key"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Order       int             `json:"order"`
	Status      SectionStatus   `json:"status"`
	Version     int             `json:"version"`
	AIGenerated bool            `json:"ai_generated"`
	DocumentIDs []uuid.UUID     `json:"document_ids"`
	Reviews     []SectionReview `json:"reviews,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Review is one reviewer's verdict on an award. Consensus is computed over
// the full set of an award's reviews.
type Review struct {
	ID         uuid.UUID    `json:"id"`
	AwardID    uuid.UUID    `json:"award_id"`
	ReviewerID string       `json:"reviewer_id"`
	Status     ReviewStatus `json:"status"`
	Comments   *string      `json:"comments"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// SectionReview annotates a section. Entries are appended, never updated.
type SectionReview struct {
	ID         uuid.UUID    `json:"id"`
	SectionID  uuid.UUID    `json:"section_id"`
	ReviewerID string       `json:"reviewer_id"`
	Status     ReviewStatus `json:"status"`
	Comments   *string      `json:"comments"`
	CreatedAt  time.Time    `json:"created_at"`
}

// GenerateCommand requests a new draft award for a case.
type GenerateCommand struct {
	CaseID    uuid.UUID `json:"case_id" validate:"required"`
	CreatedBy string    `json:"created_by" validate:"required"`
}

// SubmitCommand opens review of an award by the listed reviewers.
type SubmitCommand struct {
	ReviewerIDs []string `json:"reviewer_ids" validate:"required,min=1,dive,required"`
}

// SectionDecision is a reviewer's verdict on one section. Approved moves the
// section to approved, rejected to needs_revision.
type SectionDecision struct {
	SectionID uuid.UUID    `json:"section_id" validate:"required"`
	Status    ReviewStatus `json:"status" validate:"required,oneof=approved rejected"`
	Comments  *string      `json:"comments"`
}

// ProcessReviewCommand records a reviewer's verdict on an award.
type ProcessReviewCommand struct {
	ReviewerID     string            `json:"reviewer_id" validate:"required"`
	Status         ReviewStatus      `json:"status" validate:"required,oneof=approved rejected pending"`
	Comments       *string           `json:"comments"`
	SectionReviews []SectionDecision `json:"section_reviews" validate:"dive"`
}

// FinalizeCommand closes an approved award.
type FinalizeCommand struct {
	ApprovedBy string `json:"approved_by" validate:"required"`
}

// ReviseCommand replaces the content of a section with an edited text.
type ReviseCommand struct {
	Content string `json:"content" validate:"required"`
}

// Event types published by the workflow.
const (
	EventDrafted   = "award.drafted"
	EventSubmitted = "award.submitted"
	EventReviewed  = "award.reviewed"
	EventFinalized = "award.finalized"
)

// AwardEvent is the payload of the award lifecycle events.
type AwardEvent struct {
	AwardID uuid.UUID `json:"award_id"`
	CaseID  uuid.UUID `json:"case_id"`
	Title   string    `json:"title"`
	Version int       `json:"version"`
	Status  Status    `json:"status"`
	Actor   string    `json:"actor"`
}
