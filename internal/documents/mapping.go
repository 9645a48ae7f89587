package documents

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("case_id", "CaseID").
	Project("filename", "Filename").
	Project("title", "Title").
	Project("content_type", "ContentType").
	Project("file_type", "FileType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("file_hash", "FileHash").
	Project("content", "Content").
	Project("status", "Status").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt").
	LeftJoin("classifications", "c", "d.id = c.document_id").
	ProjectFrom("c", "categories", "Categories").
	ProjectFrom("c", "requires_review", "RequiresReview").
	ProjectFrom("c", "classified_at", "ClassifiedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Filename and Title use case-insensitive contains
// matching; Category matches documents whose classification includes the label.
type Filters struct {
	CaseID         *uuid.UUID `json:"case_id,omitempty"`
	Status         *Status    `json:"status,omitempty"`
	Filename       *string    `json:"filename,omitempty"`
	Title          *string    `json:"title,omitempty"`
	ContentType    *string    `json:"content_type,omitempty"`
	FileType       *string    `json:"file_type,omitempty"`
	Category       *string    `json:"category,omitempty"`
	RequiresReview *bool      `json:"requires_review,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CaseID", f.CaseID).
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereContains("Title", f.Title).
		WhereEquals("ContentType", f.ContentType).
		WhereEquals("FileType", f.FileType).
		WhereElement("Categories", f.Category).
		WhereEquals("RequiresReview", f.RequiresReview)
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

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	if ft := values.Get("file_type"); ft != "" {
		f.FileType = &ft
	}

	if cat := values.Get("category"); cat != "" {
		f.Category = &cat
	}

	if rr := values.Get("requires_review"); rr != "" {
		if v, err := strconv.ParseBool(rr); err == nil {
			f.RequiresReview = &v
		}
	}

	return f
}

func documentFields(d *Document) []any {
	return []any{
		&d.ID,
		&d.CaseID,
		&d.Filename,
		&d.Title,
		&d.ContentType,
		&d.FileType,
		&d.SizeBytes,
		&d.PageCount,
		&d.StorageKey,
		&d.FileHash,
		&d.Content,
		&d.Status,
		&d.UploadedAt,
		&d.UpdatedAt,
		repository.JSONScanner(&d.Categories),
		&d.RequiresReview,
		&d.ClassifiedAt,
	}
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(documentFields(&d)...)
	return d, err
}

func scanSimilar(s repository.Scanner) (Similar, error) {
	var sim Similar
	err := s.Scan(append(documentFields(&sim.Document), &sim.Distance)...)
	return sim, err
}
