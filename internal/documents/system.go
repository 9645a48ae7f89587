package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/storage"
)

// UploadLimits bounds what the upload endpoints accept.
type UploadLimits struct {
	MaxSize      int64
	AllowedTypes []string
	MaxBatch     int
}

// System defines the public contract for document domain operations.
type System interface {
	Handler(limits UploadLimits) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)

	// ListByCase returns every document of a case ordered by upload time,
	// oldest first.
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]Document, error)

	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) (*Document, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	// Open streams the original file of a document. The caller must close
	// the blob body.
	Open(ctx context.Context, id uuid.UUID) (*Document, *storage.Blob, error)

	StoreEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error

	// Similar returns up to limit documents of the same case ranked by
	// embedding distance to the document identified by id.
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]Similar, error)
}
