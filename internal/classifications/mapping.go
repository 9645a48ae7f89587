package classifications

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classifications", "c").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("categories", "Categories").
	Project("scores", "Scores").
	Project("requires_review", "RequiresReview").
	Project("review_reason", "ReviewReason").
	Project("metadata", "Metadata").
	Project("validated_by", "ValidatedBy").
	Project("validated_at", "ValidatedAt").
	Project("classified_at", "ClassifiedAt").
	Project("updated_at", "UpdatedAt").
	Join("documents", "d", "d.id = c.document_id").
	ProjectFrom("d", "case_id", "CaseID")

// projected wraps a data-modifying statement so it returns projection rows.
func projected(stmt string) string {
	return fmt.Sprintf(
		"WITH w AS (%s RETURNING *) SELECT %s FROM w c JOIN public.documents d ON d.id = c.document_id",
		stmt, projection.Columns(),
	)
}

var defaultSort = query.SortField{
	Field:      "ClassifiedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for classification queries.
// Nil fields are ignored. Category matches classifications that include the label.
type Filters struct {
	DocumentID     *uuid.UUID `json:"document_id,omitempty"`
	CaseID         *uuid.UUID `json:"case_id,omitempty"`
	Category       *string    `json:"category,omitempty"`
	RequiresReview *bool      `json:"requires_review,omitempty"`
	ValidatedBy    *string    `json:"validated_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("CaseID", f.CaseID).
		WhereElement("Categories", f.Category).
		WhereEquals("RequiresReview", f.RequiresReview).
		WhereEquals("ValidatedBy", f.ValidatedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if d := values.Get("document_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.DocumentID = &id
		}
	}

	if c := values.Get("case_id"); c != "" {
		if id, err := uuid.Parse(c); err == nil {
			f.CaseID = &id
		}
	}

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	if rr := values.Get("requires_review"); rr != "" {
		if v, err := strconv.ParseBool(rr); err == nil {
			f.RequiresReview = &v
		}
	}

	if v := values.Get("validated_by"); v != "" {
		f.ValidatedBy = &v
	}

	return f
}

func scanClassification(s repository.Scanner) (Classification, error) {
	var c Classification
	err := s.Scan(
		&c.ID,
		&c.DocumentID,
		repository.JSONScanner(&c.Categories),
		repository.JSONScanner(&c.Scores),
		&c.RequiresReview,
		&c.ReviewReason,
		repository.JSONScanner(&c.Metadata),
		&c.ValidatedBy,
		&c.ValidatedAt,
		&c.ClassifiedAt,
		&c.UpdatedAt,
		&c.CaseID,
	)
	return c, err
}
