// Package summaries produces structured summaries of case documents: an
// executive and a detailed summary from the language model, detected
// sections, key points, and text metadata extracted locally.
package summaries

import (
	"time"

	"github.com/google/uuid"
)

// Options tune a single summarization. Zero lengths and nil switches fall
// back to the engine defaults.
type Options struct {
	MaxLength               int   `json:"max_length,omitempty" validate:"gte=0"`
	MinLength               int   `json:"min_length,omitempty" validate:"gte=0"`
	ExecutiveSummaryLength  int   `json:"executive_summary_length,omitempty" validate:"gte=0"`
	ExtractLegalTerms       *bool `json:"extract_legal_terms,omitempty"`
	ExtractEntities         *bool `json:"extract_entities,omitempty"`
	SectionDetection        *bool `json:"section_detection,omitempty"`
	IncludeConfidenceScores *bool `json:"include_confidence_scores,omitempty"`
}

// Section is a titled part of a document found by heading detection.
type Section struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	WordCount  int     `json:"word_count"`
	Importance float64 `json:"importance"`
}

// Metadata describes the summarized text.
type Metadata struct {
	Language       string              `json:"language"`
	WordCount      int                 `json:"word_count"`
	SentenceCount  int                 `json:"sentence_count"`
	ParagraphCount int                 `json:"paragraph_count"`
	LegalTerms     []string            `json:"legal_terms"`
	Entities       map[string][]string `json:"entities"`
	CreatedAt      *time.Time          `json:"created_at,omitempty"`
	FileType       string              `json:"file_type"`
}

// Stats compares the detailed summary with its source.
type Stats struct {
	CompressionRatio float64 `json:"compression_ratio"`
	OriginalWords    int     `json:"original_words"`
	SummaryWords     int     `json:"summary_words"`
}

// ConfidenceScores rate the input and output of a summarization in [0,1].
type ConfidenceScores struct {
	ContentQuality float64 `json:"content_quality"`
	SummaryQuality float64 `json:"summary_quality"`
}

// Summary is the summarization of one document. Regenerating it replaces
// the stored record.
type Summary struct {
	ID               uuid.UUID         `json:"id"`
	DocumentID       uuid.UUID         `json:"document_id"`
	Title            string            `json:"title"`
	ExecutiveSummary string            `json:"executive_summary"`
	DetailedSummary  string            `json:"detailed_summary"`
	KeyPoints        []string          `json:"key_points"`
	Sections         []Section         `json:"sections"`
	Metadata         Metadata          `json:"metadata"`
	Stats            Stats             `json:"stats"`
	ConfidenceScores *ConfidenceScores `json:"confidence_scores,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// BatchCommand requests summaries for every document in a case.
type BatchCommand struct {
	CaseID  uuid.UUID `json:"case_id" validate:"required"`
	Options *Options  `json:"options,omitempty"`
}

// BatchItem reports the outcome for one document of a case-wide run.
type BatchItem struct {
	DocumentID uuid.UUID `json:"document_id"`
	Summary    *Summary  `json:"summary,omitempty"`
	Error      string    `json:"error,omitempty"`
}
