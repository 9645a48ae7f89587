// Package documents implements the case document domain: uploaded originals
// kept in blob storage, their text content, and the embeddings used to find
// related documents within a case. Documents are never deleted.
package documents

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status tracks how far a document has moved through analysis.
type Status string

// Document statuses.
const (
	StatusPending    Status = "pending"
	StatusClassified Status = "classified"
	StatusReview     Status = "review"
)

// Document is a file submitted to a case, joined with the headline of its
// classification when one exists.
type Document struct {
	ID             uuid.UUID  `json:"id"`
	CaseID         uuid.UUID  `json:"case_id"`
	Filename       string     `json:"filename"`
	Title          string     `json:"title"`
	ContentType    string     `json:"content_type"`
	FileType       string     `json:"file_type"`
	SizeBytes      int64      `json:"size_bytes"`
	PageCount      *int       `json:"page_count"`
	StorageKey     string     `json:"storage_key"`
	FileHash       string     `json:"file_hash"`
	Content        *string    `json:"content,omitempty"`
	Status         Status     `json:"status"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Categories     []string   `json:"categories,omitempty"`
	RequiresReview *bool      `json:"requires_review,omitempty"`
	ClassifiedAt   *time.Time `json:"classified_at,omitempty"`
}

// Source is the view of a document handed to the analysis engines. Content
// is nil when no text has been extracted.
type Source struct {
	ID        uuid.UUID `json:"id"`
	Content   *string   `json:"content"`
	Title     string    `json:"title,omitempty"`
	FileType  string    `json:"file_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Source returns the analysis view of d.
func (d *Document) Source() Source {
	return Source{
		ID:        d.ID,
		Content:   d.Content,
		Title:     d.Title,
		FileType:  d.FileType,
		CreatedAt: d.UploadedAt,
	}
}

// CreateCommand carries the data needed to upload and register a new document.
// Data holds the raw file bytes. Content is the extracted text, if any; plain
// text uploads use Data directly when Content is nil.
type CreateCommand struct {
	CaseID      uuid.UUID
	Data        []byte
	Filename    string
	Title       string
	ContentType string
	PageCount   *int
	Content     *string
}

// ContentCommand replaces the extracted text of a document.
type ContentCommand struct {
	Content string `json:"content" validate:"required"`
}

// Similar is a document ranked by cosine distance to a reference document.
type Similar struct {
	Document
	Distance float64 `json:"distance"`
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Document is populated and Error is empty.
// On failure, Error describes the problem and Document is nil.
type BatchResult struct {
	Document *Document `json:"document,omitempty"`
	Filename string    `json:"filename"`
	Error    string    `json:"error,omitempty"`
}

// FileType returns the lower-case extension of filename without the dot.
func FileType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// DefaultTitle derives a display title from filename.
func DefaultTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
