package awards

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/pagination"
)

// Store persists awards. Reads outside a transaction see committed state.
type Store interface {
	// InTx runs fn in one transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	Find(ctx context.Context, id uuid.UUID) (*Award, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) ([]Award, int, error)
}

// Tx is the write side of a Store transaction. Update methods write the
// mutable columns of their argument.
type Tx interface {
	// Lock loads an award with its sections and reviews and holds its row
	// lock until the transaction ends. A missing award is ErrNotFound.
	Lock(ctx context.Context, id uuid.UUID) (*Award, error)

	// NextVersion returns the version the next award of a case takes.
	NextVersion(ctx context.Context, caseID uuid.UUID) (int, error)

	InsertAward(ctx context.Context, a *Award) error
	UpdateAward(ctx context.Context, a *Award) error

	// InsertSection stores a section and links its documents.
	InsertSection(ctx context.Context, s *Section) error
	UpdateSection(ctx context.Context, s *Section) error

	// SaveReview inserts a review or replaces the one held by the same
	// reviewer on the award.
	SaveReview(ctx context.Context, r *Review) error
	InsertSectionReview(ctx context.Context, sr *SectionReview) error
}
