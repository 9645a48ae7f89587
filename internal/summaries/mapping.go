package summaries

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "document_summaries", "s").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("title", "Title").
	Project("executive_summary", "ExecutiveSummary").
	Project("detailed_summary", "DetailedSummary").
	Project("key_points", "KeyPoints").
	Project("sections", "Sections").
	Project("metadata", "Metadata").
	Project("stats", "Stats").
	Project("confidence_scores", "ConfidenceScores").
	Project("language", "Language").
	Project("file_type", "FileType").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

const returning = `RETURNING id, document_id, title, executive_summary, detailed_summary,
	key_points, sections, metadata, stats, confidence_scores, language, file_type,
	created_at, updated_at`

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for summary queries.
type Filters struct {
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	Language   *string    `json:"language,omitempty"`
	FileType   *string    `json:"file_type,omitempty"`
	Title      *string    `json:"title,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("Language", f.Language).
		WhereEquals("FileType", f.FileType).
		WhereContains("Title", f.Title)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if d := values.Get("document_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.DocumentID = &id
		}
	}

	if l := values.Get("language"); l != "" {
		f.Language = &l
	}

	if ft := values.Get("file_type"); ft != "" {
		f.FileType = &ft
	}

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	return f
}

func summaryFields(s *Summary) []any {
	return []any{
		&s.ID,
		&s.DocumentID,
		&s.Title,
		&s.ExecutiveSummary,
		&s.DetailedSummary,
		repository.JSONScanner(&s.KeyPoints),
		repository.JSONScanner(&s.Sections),
		repository.JSONScanner(&s.Metadata),
		repository.JSONScanner(&s.Stats),
		repository.JSONScanner(&s.ConfidenceScores),
		&s.Metadata.Language,
		&s.Metadata.FileType,
		&s.CreatedAt,
		&s.UpdatedAt,
	}
}

func scanSummary(sc repository.Scanner) (Summary, error) {
	var s Summary
	err := sc.Scan(summaryFields(&s)...)
	return s, err
}
