package summaries

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/pagination"
)

// System defines the public contract for summary domain operations. Write
// operations are keyed by document because a document has at most one
// summary.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Summary], error)

	Find(ctx context.Context, id uuid.UUID) (*Summary, error)
	FindByDocument(ctx context.Context, documentID uuid.UUID) (*Summary, error)

	// Create summarizes a document that has no summary yet.
	Create(ctx context.Context, documentID uuid.UUID, opts *Options) (*Summary, error)

	// Regenerate replaces the existing summary of a document.
	Regenerate(ctx context.Context, documentID uuid.UUID, opts *Options) (*Summary, error)

	Delete(ctx context.Context, documentID uuid.UUID) error

	// SummarizeCase summarizes every document of a case, replacing existing
	// summaries. Per-document failures are reported in the items.
	SummarizeCase(ctx context.Context, caseID uuid.UUID, opts *Options) ([]BatchItem, error)

	// ExecutiveSummaries returns the stored executive summaries of a case's
	// documents keyed by document id.
	ExecutiveSummaries(ctx context.Context, caseID uuid.UUID) (map[uuid.UUID]string, error)
}
