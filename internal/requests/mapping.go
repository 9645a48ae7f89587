package requests

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "document_requests", "dr").
	Project("id", "ID").
	Project("case_id", "CaseID").
	Project("requested_by", "RequestedBy").
	Project("document_type", "DocumentType").
	Project("description", "Description").
	Project("status", "Status").
	Project("document_id", "DocumentID").
	Project("due_date", "DueDate").
	Project("created_at", "CreatedAt").
	Project("fulfilled_at", "FulfilledAt")

const returning = `RETURNING id, case_id, requested_by, document_type, description,
	status, document_id, due_date, created_at, fulfilled_at`

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for request queries.
// CaseID and Status use exact matching; DocumentType uses contains matching.
type Filters struct {
	CaseID       *uuid.UUID `json:"case_id,omitempty"`
	Status       *Status    `json:"status,omitempty"`
	DocumentType *string    `json:"document_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CaseID", f.CaseID).
		WhereEquals("Status", f.Status).
		WhereContains("DocumentType", f.DocumentType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("case_id"); c != "" {
		if id, err := uuid.Parse(c); err == nil {
			f.CaseID = &id
		}
	}

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}

	if d := values.Get("document_type"); d != "" {
		f.DocumentType = &d
	}

	return f
}

func scanRequest(s repository.Scanner) (Request, error) {
	var r Request
	err := s.Scan(
		&r.ID,
		&r.CaseID,
		&r.RequestedBy,
		&r.DocumentType,
		&r.Description,
		&r.Status,
		&r.DocumentID,
		&r.DueDate,
		&r.CreatedAt,
		&r.FulfilledAt,
	)
	return r, err
}
