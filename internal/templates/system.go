package templates

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/pagination"
)

// System defines the public contract for template domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Template], error)

	Find(ctx context.Context, id uuid.UUID) (*Template, error)
	Create(ctx context.Context, cmd CreateCommand) (*Template, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Template, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Activate makes the template the override for its section,
	// deactivating any other template of that section.
	Activate(ctx context.Context, id uuid.UUID) (*Template, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Template, error)

	// Resolve returns the active override body for a section, or the
	// built-in default when none is active.
	Resolve(ctx context.Context, key Key) (string, error)
}
