package classifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/pagination"
)

// EventClassified is published after a classification is stored.
const EventClassified = "document.classified"

// ClassifiedEvent is the payload of EventClassified.
type ClassifiedEvent struct {
	DocumentID     uuid.UUID `json:"document_id"`
	CaseID         uuid.UUID `json:"case_id"`
	Categories     []string  `json:"categories"`
	RequiresReview bool      `json:"requires_review"`
}

// System defines the public contract for classification domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Classification], error)

	Find(ctx context.Context, id uuid.UUID) (*Classification, error)
	FindByDocument(ctx context.Context, documentID uuid.UUID) (*Classification, error)

	// ListByCase returns the classifications of every classified document
	// in a case, keyed by document id.
	ListByCase(ctx context.Context, caseID uuid.UUID) (map[uuid.UUID]Classification, error)

	// Classify categorizes a document and stores the result, replacing any
	// previous classification.
	Classify(ctx context.Context, documentID uuid.UUID) (*Classification, error)

	// ClassifyCase classifies every document of a case. Individual failures
	// are reported per item; ErrBatchExhausted is returned only when all
	// documents failed.
	ClassifyCase(ctx context.Context, caseID uuid.UUID) ([]BatchItem, error)

	Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Classification, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Classification, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
