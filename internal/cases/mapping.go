package cases

import (
	"net/url"

	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "cases", "cs").
	Project("id", "ID").
	Project("case_number", "CaseNumber").
	Project("title", "Title").
	Project("description", "Description").
	Project("status", "Status").
	Project("filed_date", "FiledDate").
	Project("contact_email", "ContactEmail").
	Project("parties", "Parties").
	Project("tribunal", "Tribunal").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const returning = `RETURNING id, case_number, title, description, status, filed_date,
	contact_email, parties, tribunal, created_at, updated_at`

var defaultSort = query.SortField{
	Field:      "FiledDate",
	Descending: true,
}

// Filters contains optional filtering criteria for case queries.
// Status uses exact matching; CaseNumber and Title use contains matching.
type Filters struct {
	Status     *Status `json:"status,omitempty"`
	CaseNumber *string `json:"case_number,omitempty"`
	Title      *string `json:"title,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("CaseNumber", f.CaseNumber).
		WhereContains("Title", f.Title)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}
	if n := values.Get("case_number"); n != "" {
		f.CaseNumber = &n
	}
	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	return f
}

func scanCase(s repository.Scanner) (Case, error) {
	var c Case
	err := s.Scan(
		&c.ID,
		&c.CaseNumber,
		&c.Title,
		&c.Description,
		&c.Status,
		&c.FiledDate,
		&c.ContactEmail,
		repository.JSONScanner(&c.Parties),
		repository.JSONScanner(&c.Tribunal),
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
