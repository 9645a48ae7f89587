package documents_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/storage"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", documents.ErrNotFound, http.StatusNotFound},
		{"case not found", documents.ErrCaseNotFound, http.StatusNotFound},
		{"blob not found", storage.ErrNotFound, http.StatusNotFound},
		{"duplicate", documents.ErrDuplicate, http.StatusConflict},
		{"no embedding", documents.ErrNoEmbedding, http.StatusConflict},
		{"file too large", documents.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"batch too large", documents.ErrBatchTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported type", documents.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{"invalid file", documents.ErrInvalidFile, http.StatusBadRequest},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped duplicate", fmt.Errorf("insert failed: %w", documents.ErrDuplicate), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := documents.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	caseID := uuid.New()

	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"case_id":         {caseID.String()},
			"status":          {"review"},
			"filename":        {"award"},
			"title":           {"statement"},
			"content_type":    {"application/pdf"},
			"file_type":       {"pdf"},
			"category":        {"Statement of Claim"},
			"requires_review": {"true"},
		}

		f := documents.FiltersFromQuery(values)

		if f.CaseID == nil || *f.CaseID != caseID {
			t.Errorf("CaseID = %v, want %v", f.CaseID, caseID)
		}
		if f.Status == nil || *f.Status != documents.StatusReview {
			t.Errorf("Status = %v, want review", f.Status)
		}
		if f.Filename == nil || *f.Filename != "award" {
			t.Errorf("Filename = %v, want award", f.Filename)
		}
		if f.Title == nil || *f.Title != "statement" {
			t.Errorf("Title = %v, want statement", f.Title)
		}
		if f.FileType == nil || *f.FileType != "pdf" {
			t.Errorf("FileType = %v, want pdf", f.FileType)
		}
		if f.Category == nil || *f.Category != "Statement of Claim" {
			t.Errorf("Category = %v", f.Category)
		}
		if f.RequiresReview == nil || !*f.RequiresReview {
			t.Errorf("RequiresReview = %v, want true", f.RequiresReview)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{
			"case_id":         {"nope"},
			"requires_review": {"maybe"},
		})
		if f.CaseID != nil {
			t.Errorf("CaseID = %v, want nil", f.CaseID)
		}
		if f.RequiresReview != nil {
			t.Errorf("RequiresReview = %v, want nil", f.RequiresReview)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{})
		if f.Status != nil || f.Filename != nil || f.Category != nil || f.CaseID != nil {
			t.Errorf("filters = %+v, want all nil", f)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	projection := query.
		NewProjectionMap("public", "documents", "d").
		Project("case_id", "CaseID").
		Project("status", "Status").
		LeftJoin("classifications", "c", "d.id = c.document_id").
		ProjectFrom("c", "categories", "Categories")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(projection)
		documents.Filters{}.Apply(b)
		sql, args := b.Build()

		want := "SELECT d.case_id, d.status, c.categories FROM public.documents d LEFT JOIN public.classifications c ON d.id = c.document_id"
		if sql != want {
			t.Errorf("sql = %q, want %q", sql, want)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("category matches the joined array", func(t *testing.T) {
		b := query.NewBuilder(projection)
		status := documents.StatusClassified
		documents.Filters{
			Status:   &status,
			Category: ptr("Final Award"),
		}.Apply(b)
		sql, args := b.Build()

		if !strings.Contains(sql, "WHERE d.status = $1 AND c.categories @> jsonb_build_array($2::text)") {
			t.Errorf("sql = %q", sql)
		}
		if len(args) != 2 || args[1] != "Final Award" {
			t.Errorf("args = %v", args)
		}
	})
}

func TestDocumentSource(t *testing.T) {
	doc := sampleDoc()
	src := doc.Source()

	if src.ID != doc.ID {
		t.Errorf("ID = %v, want %v", src.ID, doc.ID)
	}
	if src.Content == nil || *src.Content != *doc.Content {
		t.Errorf("Content = %v, want %q", src.Content, *doc.Content)
	}
	if src.Title != doc.Title || src.FileType != "pdf" {
		t.Errorf("source = %+v", src)
	}
	if !src.CreatedAt.Equal(doc.UploadedAt) {
		t.Errorf("CreatedAt = %v, want %v", src.CreatedAt, doc.UploadedAt)
	}
}

func TestFileHelpers(t *testing.T) {
	tests := []struct {
		filename  string
		fileType  string
		wantTitle string
	}{
		{"Statement of Claim.PDF", "pdf", "Statement of Claim"},
		{"dir/notes.txt", "txt", "notes"},
		{"README", "", "README"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := documents.FileType(tt.filename); got != tt.fileType {
				t.Errorf("FileType = %q, want %q", got, tt.fileType)
			}
			if got := documents.DefaultTitle(tt.filename); got != tt.wantTitle {
				t.Errorf("DefaultTitle = %q, want %q", got, tt.wantTitle)
			}
		})
	}
}

func TestHash(t *testing.T) {
	a := documents.Hash([]byte("exhibit"))
	b := documents.Hash([]byte("exhibit"))
	c := documents.Hash([]byte("exhibit 2"))

	if a != b {
		t.Error("same input produced different hashes")
	}
	if a == c {
		t.Error("different input produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
}
