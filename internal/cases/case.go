// Package cases implements the arbitration case domain: the proceeding
// every document, request and award belongs to.
package cases

import (
	"time"

	"github.com/google/uuid"
)

// Status is the procedural state of a case.
type Status string

// Case statuses.
const (
	StatusDraft      Status = "draft"
	StatusFiled      Status = "filed"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Party is a participant in the proceeding, e.g. claimant or respondent.
type Party struct {
	Name string `json:"name" validate:"required"`
	Role string `json:"role" validate:"required"`
}

// Case is an arbitration proceeding.
type Case struct {
	ID           uuid.UUID `json:"id"`
	CaseNumber   string    `json:"case_number"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       Status    `json:"status"`
	FiledDate    time.Time `json:"filed_date"`
	ContactEmail string    `json:"contact_email"`
	Parties      []Party   `json:"parties"`
	Tribunal     []string  `json:"tribunal"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to open a new case.
type CreateCommand struct {
	CaseNumber   string     `json:"case_number" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	FiledDate    *time.Time `json:"filed_date"`
	ContactEmail string     `json:"contact_email" validate:"omitempty,email"`
	Parties      []Party    `json:"parties" validate:"dive"`
	Tribunal     []string   `json:"tribunal"`
}

// UpdateCommand replaces the mutable fields of a case.
type UpdateCommand struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	Status       Status   `json:"status" validate:"required,oneof=draft filed in_progress resolved closed"`
	ContactEmail string   `json:"contact_email" validate:"omitempty,email"`
	Parties      []Party  `json:"parties" validate:"dive"`
	Tribunal     []string `json:"tribunal"`
}
