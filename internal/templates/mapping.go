package templates

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "section_templates", "t").
	Project("id", "ID").
	Project("name", "Name").
	Project("section_key", "Section").
	Project("body", "Body").
	Project("description", "Description").
	Project("active", "Active").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const returning = `RETURNING id, name, section_key, body, description, active, created_at, updated_at`

var defaultSort = query.SortField{
	Field: "Name",
}

// Filters contains optional filtering criteria for template queries.
// Section and Active use exact matching; Name uses contains matching.
type Filters struct {
	Section *Key    `json:"section,omitempty"`
	Name    *string `json:"name,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Section", f.Section).
		WhereContains("Name", f.Name).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("section"); s != "" {
		if key, err := ParseKey(s); err == nil {
			f.Section = &key
		}
	}

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}

	return f
}

func scanTemplate(s repository.Scanner) (Template, error) {
	var t Template
	err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Section,
		&t.Body,
		&t.Description,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}
