package awards

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/pagination"
)

// System defines the public contract for award operations. Every mutating
// operation runs in a single transaction with the award row locked.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Award], error)

	// Find returns an award with its sections and reviews.
	Find(ctx context.Context, id uuid.UUID) (*Award, error)

	// Preview aggregates the material of a case without creating an award.
	Preview(ctx context.Context, caseID uuid.UUID) (*CaseData, error)

	// GenerateDraft creates the next award version of a case with all six
	// sections rendered. Nothing is written if any section fails to render.
	GenerateDraft(ctx context.Context, cmd GenerateCommand) (*Award, error)

	SubmitForReview(ctx context.Context, id uuid.UUID, cmd SubmitCommand) (*Award, error)
	ProcessReview(ctx context.Context, id uuid.UUID, cmd ProcessReviewCommand) (*Award, error)
	Finalize(ctx context.Context, id uuid.UUID, cmd FinalizeCommand) (*Award, error)

	// ReviseSection replaces the content of a draft or needs_revision
	// section while the award is open for edits.
	ReviseSection(ctx context.Context, id, sectionID uuid.UUID, cmd ReviseCommand) (*Award, error)

	// Render returns the full text of an award, sections in order.
	Render(ctx context.Context, id uuid.UUID) (string, error)
}
