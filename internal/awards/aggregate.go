package awards

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/cases"
	"github.com/JaimeStill/arbiter/internal/classifications"
	"github.com/JaimeStill/arbiter/internal/documents"
)

// Bucket names a group of case material an award section draws on.
type Bucket string

// Aggregation buckets.
const (
	BucketProceduralHistory Bucket = "procedural_history"
	BucketFactualBackground Bucket = "factual_background"
	BucketLegalAnalysis     Bucket = "legal_analysis"
	BucketEvidence          Bucket = "evidence"
	BucketDecisions         Bucket = "decisions"
)

var bucketOrder = []Bucket{
	BucketProceduralHistory,
	BucketFactualBackground,
	BucketLegalAnalysis,
	BucketEvidence,
	BucketDecisions,
}

// Entry is a document as it appears in an aggregation bucket.
type Entry struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title"`
	Categories []string  `json:"categories"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CaseInfo is the case metadata rendered into an award.
type CaseInfo struct {
	ID        uuid.UUID     `json:"id"`
	Number    string        `json:"number"`
	Title     string        `json:"title"`
	FiledDate time.Time     `json:"filed_date"`
	Parties   []cases.Party `json:"parties"`
	Tribunal  []string      `json:"tribunal"`
}

// CaseData is a case's material grouped into buckets. Entries keep the
// upload order of their documents.
type CaseData struct {
	Case              CaseInfo `json:"case"`
	ProceduralHistory []Entry  `json:"procedural_history"`
	FactualBackground []Entry  `json:"factual_background"`
	LegalAnalysis     []Entry  `json:"legal_analysis"`
	Evidence          []Entry  `json:"evidence"`
	Decisions         []Entry  `json:"decisions"`
}

// Entries returns the contents of bucket b.
func (d *CaseData) Entries(b Bucket) []Entry {
	switch b {
	case BucketProceduralHistory:
		return d.ProceduralHistory
	case BucketFactualBackground:
		return d.FactualBackground
	case BucketLegalAnalysis:
		return d.LegalAnalysis
	case BucketEvidence:
		return d.Evidence
	case BucketDecisions:
		return d.Decisions
	default:
		return nil
	}
}

func (d *CaseData) add(b Bucket, e Entry) {
	switch b {
	case BucketProceduralHistory:
		d.ProceduralHistory = append(d.ProceduralHistory, e)
	case BucketFactualBackground:
		d.FactualBackground = append(d.FactualBackground, e)
	case BucketLegalAnalysis:
		d.LegalAnalysis = append(d.LegalAnalysis, e)
	case BucketEvidence:
		d.Evidence = append(d.Evidence, e)
	case BucketDecisions:
		d.Decisions = append(d.Decisions, e)
	}
}

// Bucketer decides which buckets a document belongs to from its
// categories. Unclassified documents have no categories.
type Bucketer interface {
	Buckets(categories []string) []Bucket
}

// HierarchyBucketer buckets by the top-level group of each category.
type HierarchyBucketer struct {
	hierarchy *classifications.Hierarchy
	groups    map[string][]Bucket
}

// NewHierarchyBucketer creates the default bucketer over h.
func NewHierarchyBucketer(h *classifications.Hierarchy) *HierarchyBucketer {
	return &HierarchyBucketer{
		hierarchy: h,
		groups: map[string][]Bucket{
			"procedural":     {BucketProceduralHistory},
			"administrative": {BucketProceduralHistory},
			"submissions":    {BucketLegalAnalysis, BucketFactualBackground},
			"evidence":       {BucketEvidence, BucketFactualBackground},
			"awards":         {BucketDecisions},
		},
	}
}

// Buckets returns the buckets of every category's group in bucket order.
// Documents with no recognised category land in the factual background.
func (b *HierarchyBucketer) Buckets(categories []string) []Bucket {
	seen := make(map[Bucket]bool)
	for _, c := range categories {
		root, ok := b.hierarchy.Root(c)
		if !ok {
			continue
		}
		for _, bucket := range b.groups[root] {
			seen[bucket] = true
		}
	}

	if len(seen) == 0 {
		return []Bucket{BucketFactualBackground}
	}

	out := make([]Bucket, 0, len(seen))
	for _, bucket := range bucketOrder {
		if seen[bucket] {
			out = append(out, bucket)
		}
	}
	return out
}

// CaseFinder looks up cases.
type CaseFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*cases.Case, error)
}

// DocumentLister lists the documents of a case oldest first.
type DocumentLister interface {
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]documents.Document, error)
}

// ClassificationLister lists the classifications of a case by document.
type ClassificationLister interface {
	ListByCase(ctx context.Context, caseID uuid.UUID) (map[uuid.UUID]classifications.Classification, error)
}

// SummaryLister lists the executive summaries of a case by document.
type SummaryLister interface {
	ExecutiveSummaries(ctx context.Context, caseID uuid.UUID) (map[uuid.UUID]string, error)
}

// CaseAggregator assembles the material of a case.
type CaseAggregator interface {
	Aggregate(ctx context.Context, caseID uuid.UUID) (*CaseData, error)
}

// Aggregator groups a case's documents into award buckets.
type Aggregator struct {
	cases           CaseFinder
	docs            DocumentLister
	classifications ClassificationLister
	summaries       SummaryLister
	bucketer        Bucketer
}

// NewAggregator creates an Aggregator. summaries may be nil, in which case
// entries carry no summary.
func NewAggregator(
	cases CaseFinder,
	docs DocumentLister,
	classifications ClassificationLister,
	summaries SummaryLister,
	bucketer Bucketer,
) *Aggregator {
	return &Aggregator{
		cases:           cases,
		docs:            docs,
		classifications: classifications,
		summaries:       summaries,
		bucketer:        bucketer,
	}
}

// Aggregate gathers the case metadata and buckets every document of the
// case. A missing case is ErrCaseNotFound.
func (a *Aggregator) Aggregate(ctx context.Context, caseID uuid.UUID) (*CaseData, error) {
	c, err := a.cases.Find(ctx, caseID)
	if err != nil {
		if errors.Is(err, cases.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
		}
		return nil, fmt.Errorf("find case: %w", err)
	}

	docs, err := a.docs.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case documents: %w", err)
	}

	byDoc, err := a.classifications.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case classifications: %w", err)
	}

	summaries := map[uuid.UUID]string{}
	if a.summaries != nil {
		if summaries, err = a.summaries.ExecutiveSummaries(ctx, caseID); err != nil {
			return nil, fmt.Errorf("list case summaries: %w", err)
		}
	}

	data := &CaseData{
		Case: CaseInfo{
			ID:        c.ID,
			Number:    c.CaseNumber,
			Title:     c.Title,
			FiledDate: c.FiledDate,
			Parties:   slices.Clone(c.Parties),
			Tribunal:  slices.Clone(c.Tribunal),
		},
	}

	slices.SortStableFunc(docs, func(x, y documents.Document) int {
		return x.UploadedAt.Compare(y.UploadedAt)
	})

	for _, d := range docs {
		var categories []string
		if cl, ok := byDoc[d.ID]; ok {
			categories = cl.Categories
		}

		title := d.Title
		if title == "" {
			title = d.Filename
		}

		entry := Entry{
			DocumentID: d.ID,
			Filename:   d.Filename,
			Title:      title,
			Categories: categories,
			Summary:    summaries[d.ID],
			CreatedAt:  d.UploadedAt,
		}

		for _, b := range a.bucketer.Buckets(categories) {
			data.add(b, entry)
		}
	}

	return data, nil
}
