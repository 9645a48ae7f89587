package cases

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/pagination"
)

// System defines the public contract for case domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Case], error)

	Find(ctx context.Context, id uuid.UUID) (*Case, error)
	Create(ctx context.Context, cmd CreateCommand) (*Case, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Case, error)
}
