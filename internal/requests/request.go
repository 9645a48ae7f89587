// Package requests implements document requests: a party or the tribunal
// asks for a document in a case, the case contact is notified, and the
// request is closed when a matching document is uploaded.
package requests

import (
	"time"

	"github.com/google/uuid"
)

// Status is the state of a document request.
type Status string

// Request statuses.
const (
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusCancelled Status = "cancelled"
)

// Request asks for a document to be submitted to a case. DocumentID and
// FulfilledAt are set once the request is fulfilled.
type Request struct {
	ID           uuid.UUID  `json:"id"`
	CaseID       uuid.UUID  `json:"case_id"`
	RequestedBy  string     `json:"requested_by"`
	DocumentType string     `json:"document_type"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	DocumentID   *uuid.UUID `json:"document_id"`
	DueDate      *time.Time `json:"due_date"`
	CreatedAt    time.Time  `json:"created_at"`
	FulfilledAt  *time.Time `json:"fulfilled_at"`
}

// CreateCommand opens a document request.
type CreateCommand struct {
	CaseID       uuid.UUID  `json:"case_id" validate:"required"`
	RequestedBy  string     `json:"requested_by" validate:"required"`
	DocumentType string     `json:"document_type" validate:"required"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date"`
}

// FulfillCommand closes a request with a document of the same case.
type FulfillCommand struct {
	DocumentID uuid.UUID `json:"document_id" validate:"required"`
}

// EventRequested is published after a request is opened.
const EventRequested = "document.requested"

// RequestedEvent is the payload of EventRequested. ContactEmail is empty
// when the case has no contact.
type RequestedEvent struct {
	RequestID    uuid.UUID  `json:"request_id"`
	CaseID       uuid.UUID  `json:"case_id"`
	CaseNumber   string     `json:"case_number"`
	ContactEmail string     `json:"contact_email"`
	RequestedBy  string     `json:"requested_by"`
	DocumentType string     `json:"document_type"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}
