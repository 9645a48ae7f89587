package classifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/internal/models"
	"github.com/JaimeStill/arbiter/pkg/formatting"
)

// Review reasons recorded on results that need a human.
const (
	ReasonNoContent = "Document has no content to classify"
	reasonLowScore  = "Low confidence score for category: "
	reasonError     = "Error during classification: "
)

// Thresholds partition label scores. A score at or above Secondary assigns
// the label; a score in [Review, Secondary) flags the document for review.
type Thresholds struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
	Review    float64 `json:"review"`
}

// DefaultThresholds returns the 0.7 / 0.5 / 0.4 partition.
func DefaultThresholds() Thresholds {
	return Thresholds{Primary: 0.7, Secondary: 0.5, Review: 0.4}
}

// Metadata describes the text a result was computed from.
type Metadata struct {
	TextLength      int      `json:"text_length"`
	ProcessedLength int      `json:"processed_length"`
	TitleKeywords   []string `json:"title_keywords"`
}

// Result is the outcome of categorizing one document. Err is set on the
// placeholder results BatchCategorize substitutes for failed documents.
type Result struct {
	DocumentID     uuid.UUID          `json:"document_id"`
	Categories     []string           `json:"categories"`
	Scores         map[string]float64 `json:"scores"`
	RequiresReview bool               `json:"requires_review"`
	ReviewReason   *string            `json:"review_reason,omitempty"`
	Metadata       Metadata           `json:"metadata"`
	ClassifiedAt   time.Time          `json:"classified_at"`
	Err            error              `json:"-"`
}

// Engine scores documents against the category hierarchy.
type Engine struct {
	model      models.Model
	hierarchy  *Hierarchy
	thresholds Thresholds
	maxContent int
	logger     *slog.Logger
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThresholds overrides the default thresholds.
func WithThresholds(t Thresholds) EngineOption {
	return func(e *Engine) { e.thresholds = t }
}

// WithMaxContentLength caps the number of characters sent to the model.
func WithMaxContentLength(n int) EngineOption {
	return func(e *Engine) { e.maxContent = n }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l.With("engine", "classification") }
}

// WithClock sets the time source used for ClassifiedAt.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a classification engine over hierarchy.
func NewEngine(model models.Model, hierarchy *Hierarchy, opts ...EngineOption) *Engine {
	e := &Engine{
		model:      model,
		hierarchy:  hierarchy,
		thresholds: DefaultThresholds(),
		maxContent: 5000,
		logger:     slog.New(slog.DiscardHandler),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hierarchy returns the category tree the engine scores against.
func (e *Engine) Hierarchy() *Hierarchy {
	return e.hierarchy
}

// Categorize scores src against every label of the hierarchy. A document
// without content yields a result flagged for review rather than an error.
// Model failures are reported as ErrProcessing.
func (e *Engine) Categorize(ctx context.Context, src documents.Source) (Result, error) {
	result := Result{
		DocumentID:   src.ID,
		Categories:   []string{},
		Scores:       map[string]float64{},
		ClassifiedAt: e.now(),
		Metadata: Metadata{
			TitleKeywords: titleKeywords(src.Title),
		},
	}

	if src.Content == nil || strings.TrimSpace(*src.Content) == "" {
		reason := ReasonNoContent
		result.RequiresReview = true
		result.ReviewReason = &reason
		return result, nil
	}

	content := *src.Content
	processed := truncateRunes(content, e.maxContent)
	result.Metadata.TextLength = utf8.RuneCountInString(content)
	result.Metadata.ProcessedLength = utf8.RuneCountInString(processed)

	labels := e.hierarchy.Labels()
	pred, err := e.model.Classify(ctx, processed, labels)
	if err != nil {
		return Result{}, fmt.Errorf("%w: classify document %s: %w", ErrProcessing, src.ID, err)
	}

	scores := pred.ScoreMap()
	for _, l := range labels {
		result.Scores[l] = scores[l]
	}

	e.apply(&result, labels)

	e.logger.InfoContext(ctx, "document categorized",
		"document_id", src.ID,
		"categories", len(result.Categories),
		"requires_review", result.RequiresReview,
	)
	return result, nil
}

// apply assigns labels to result by walking them from highest to lowest
// score. The review reason ends up naming the lowest-scoring label in the
// review band.
func (e *Engine) apply(result *Result, labels []string) {
	ranked := slices.Clone(labels)
	slices.SortStableFunc(ranked, func(a, b string) int {
		switch sa, sb := result.Scores[a], result.Scores[b]; {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})

	for _, l := range ranked {
		s := result.Scores[l]
		switch {
		case s >= e.thresholds.Secondary:
			result.Categories = append(result.Categories, l)
		case s >= e.thresholds.Review:
			reason := reasonLowScore + l
			result.RequiresReview = true
			result.ReviewReason = &reason
		}
	}
}

// BatchCategorize categorizes docs concurrently and returns one result per
// document in input order. A document whose categorization fails gets a
// placeholder result flagged for review with Err set. When every document
// fails the batch reports ErrBatchExhausted.
func (e *Engine) BatchCategorize(ctx context.Context, docs []documents.Source) ([]Result, error) {
	results := make([]Result, len(docs))
	if len(docs) == 0 {
		return results, nil
	}

	errs := make([]error, len(docs))

	var g errgroup.Group
	g.SetLimit(workerCount(len(docs)))

	for i := range docs {
		g.Go(func() error {
			r, err := e.Categorize(ctx, docs[i])
			if err != nil {
				errs[i] = err
				r = e.failed(docs[i], err)
			}
			results[i] = r
			return nil
		})
	}
	g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}

	e.logger.InfoContext(ctx, "batch categorized", "documents", len(docs), "failed", failed)

	if failed == len(docs) {
		return nil, fmt.Errorf("%w: %d documents: %w", ErrBatchExhausted, failed, errors.Join(errs...))
	}
	return results, nil
}

func (e *Engine) failed(src documents.Source, err error) Result {
	reason := reasonError + err.Error()
	return Result{
		DocumentID:     src.ID,
		Categories:     []string{},
		Scores:         map[string]float64{},
		RequiresReview: true,
		ReviewReason:   &reason,
		ClassifiedAt:   e.now(),
		Err:            err,
	}
}

func workerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "in": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "their": {},
	"this": {}, "to": {}, "v": {}, "vs": {}, "was": {}, "were": {}, "with": {},
}

func titleKeywords(title string) []string {
	keywords := []string{}
	for _, w := range formatting.Words(title) {
		w = strings.Trim(w, ".,;:()[]\"'")
		if w == "" {
			continue
		}
		if _, stop := stopWords[strings.ToLower(w)]; stop {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}
