package requests

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/pagination"
)

// System defines the public contract for document request operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Request], error)

	Find(ctx context.Context, id uuid.UUID) (*Request, error)

	// Pending returns the open requests of a case, oldest first.
	Pending(ctx context.Context, caseID uuid.UUID) ([]Request, error)

	// Create opens a request and notifies the case contact.
	Create(ctx context.Context, cmd CreateCommand) (*Request, error)

	// Fulfill links a document of the same case and closes the request.
	Fulfill(ctx context.Context, id uuid.UUID, cmd FulfillCommand) (*Request, error)

	Cancel(ctx context.Context, id uuid.UUID) (*Request, error)
}
