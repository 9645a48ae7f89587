package summaries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/internal/models"
	"github.com/JaimeStill/arbiter/pkg/formatting"
)

// Summarization stages reported by StageError.
const (
	StageExecutive = "executive_summary"
	StageDetailed  = "detailed_summary"
)

type settings struct {
	maxLength         int
	minLength         int
	executiveLength   int
	legalTerms        bool
	entities          bool
	sectionDetection  bool
	confidenceScoring bool
}

// DefaultOptions returns the engine defaults: 500 / 50 / 100 words with
// term, entity and section extraction on and confidence scores off.
func DefaultOptions() Options {
	on, off := true, false
	return Options{
		MaxLength:               500,
		MinLength:               50,
		ExecutiveSummaryLength:  100,
		ExtractLegalTerms:       &on,
		ExtractEntities:         &on,
		SectionDetection:        &on,
		IncludeConfidenceScores: &off,
	}
}

// resolve overlays o on base. Unset fields of both fall back to
// DefaultOptions.
func resolve(base Options, o *Options) settings {
	d := DefaultOptions()
	s := settings{
		maxLength:         first(d.MaxLength, base.MaxLength),
		minLength:         first(d.MinLength, base.MinLength),
		executiveLength:   first(d.ExecutiveSummaryLength, base.ExecutiveSummaryLength),
		legalTerms:        flag(*d.ExtractLegalTerms, base.ExtractLegalTerms),
		entities:          flag(*d.ExtractEntities, base.ExtractEntities),
		sectionDetection:  flag(*d.SectionDetection, base.SectionDetection),
		confidenceScoring: flag(*d.IncludeConfidenceScores, base.IncludeConfidenceScores),
	}
	if o == nil {
		return s
	}

	s.maxLength = first(s.maxLength, o.MaxLength)
	s.minLength = first(s.minLength, o.MinLength)
	s.executiveLength = first(s.executiveLength, o.ExecutiveSummaryLength)
	s.legalTerms = flag(s.legalTerms, o.ExtractLegalTerms)
	s.entities = flag(s.entities, o.ExtractEntities)
	s.sectionDetection = flag(s.sectionDetection, o.SectionDetection)
	s.confidenceScoring = flag(s.confidenceScoring, o.IncludeConfidenceScores)
	return s
}

func first(fallback, v int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func flag(fallback bool, v *bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

// Result is the outcome for one document of BatchSummarize. Exactly one of
// Summary and Err is set.
type Result struct {
	DocumentID uuid.UUID
	Summary    *Summary
	Err        error
}

// Engine summarizes document text with a language model.
type Engine struct {
	model    models.Model
	defaults Options
	logger   *slog.Logger
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDefaults sets the options used where a request leaves a field unset.
func WithDefaults(o Options) EngineOption {
	return func(e *Engine) { e.defaults = o }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l.With("engine", "summarization") }
}

// WithClock sets the time source for summary timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a summarization engine.
func NewEngine(model models.Model, opts ...EngineOption) *Engine {
	e := &Engine{
		model:    model,
		defaults: DefaultOptions(),
		logger:   slog.New(slog.DiscardHandler),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summarize produces the summary of src. Missing content is
// ErrInvalidDocument and blank content is ErrEmptyContent; neither reaches
// the model. Model failures are returned as a *StageError.
func (e *Engine) Summarize(ctx context.Context, src documents.Source, o *Options) (*Summary, error) {
	if src.Content == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, src.ID)
	}
	text := *src.Content
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	s := resolve(e.defaults, o)

	meta := Metadata{
		Language:       detectLanguage(text),
		WordCount:      formatting.WordCount(text),
		SentenceCount:  len(sentences(text)),
		ParagraphCount: paragraphCount(text),
		LegalTerms:     []string{},
		Entities:       map[string][]string{},
		FileType:       src.FileType,
	}
	if !src.CreatedAt.IsZero() {
		created := src.CreatedAt
		meta.CreatedAt = &created
	}
	if s.legalTerms {
		meta.LegalTerms = extractLegalTerms(text)
	}
	if s.entities {
		meta.Entities = extractEntities(text)
	}

	sections := []Section{}
	if s.sectionDetection {
		sections = detectSections(text)
	}

	executive, err := e.model.Summarize(ctx, text, s.executiveLength)
	if err != nil {
		return nil, &StageError{Stage: StageExecutive, Err: err}
	}
	executive = formatting.TruncateWords(executive, s.executiveLength)

	detailed := formatting.TruncateWords(text, s.maxLength)
	if meta.WordCount > s.minLength {
		detailed, err = e.model.Summarize(ctx, text, s.maxLength)
		if err != nil {
			return nil, &StageError{Stage: StageDetailed, Err: err}
		}
		detailed = formatting.TruncateWords(detailed, s.maxLength)
	}

	stats := Stats{
		OriginalWords: meta.WordCount,
		SummaryWords:  formatting.WordCount(detailed),
	}
	if stats.OriginalWords > 0 {
		stats.CompressionRatio = float64(stats.SummaryWords) / float64(stats.OriginalWords)
	}

	now := e.now()
	summary := &Summary{
		DocumentID:       src.ID,
		Title:            src.Title,
		ExecutiveSummary: executive,
		DetailedSummary:  detailed,
		KeyPoints:        keyPoints(text, sections),
		Sections:         sections,
		Metadata:         meta,
		Stats:            stats,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if s.confidenceScoring {
		summary.ConfidenceScores = confidence(meta, sections, stats, s.minLength)
	}

	e.logger.InfoContext(ctx, "document summarized",
		"document_id", src.ID,
		"words", stats.OriginalWords,
		"summary_words", stats.SummaryWords,
		"sections", len(sections),
	)
	return summary, nil
}

// BatchSummarize summarizes docs concurrently and returns one result per
// document in input order. Failures are isolated per document; only when
// every document fails is ErrBatchExhausted returned.
func (e *Engine) BatchSummarize(ctx context.Context, docs []documents.Source, o *Options) ([]Result, error) {
	results := make([]Result, len(docs))
	if len(docs) == 0 {
		return results, nil
	}

	var g errgroup.Group
	g.SetLimit(max(min(runtime.NumCPU(), len(docs)), 1))

	for i := range docs {
		g.Go(func() error {
			s, err := e.Summarize(ctx, docs[i], o)
			results[i] = Result{DocumentID: docs[i].ID, Summary: s, Err: err}
			return nil
		})
	}
	g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}

	e.logger.InfoContext(ctx, "batch summarized", "documents", len(docs), "failed", len(errs))

	if len(errs) == len(docs) {
		return nil, fmt.Errorf("%w: %d documents: %w", ErrBatchExhausted, len(errs), errors.Join(errs...))
	}
	return results, nil
}
