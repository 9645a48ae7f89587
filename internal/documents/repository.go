package documents

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
	"github.com/JaimeStill/arbiter/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler(limits UploadLimits) *Handler {
	return NewHandler(r, r.logger, r.pagination, limits)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "Title")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]Document, error) {
	q, args := query.
		NewBuilder(projection, query.SortField{Field: "UploadedAt"}).
		WhereEquals("CaseID", caseID).
		Build()

	docs, err := repository.QueryMany(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query case documents: %w", err)
	}
	return docs, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}

	id := uuid.New()
	key := buildStorageKey(cmd.CaseID, id, sanitizeFilename(cmd.Filename))

	title := cmd.Title
	if title == "" {
		title = DefaultTitle(cmd.Filename)
	}

	content := cmd.Content
	if content == nil && cmd.ContentType == "text/plain" {
		text := string(cmd.Data)
		content = &text
	}

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	q := `
		INSERT INTO documents(id, case_id, filename, title, content_type, file_type,
			size_bytes, page_count, storage_key, file_hash, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	args := []any{
		id,
		cmd.CaseID,
		cmd.Filename,
		title,
		cmd.ContentType,
		FileType(cmd.Filename),
		int64(len(cmd.Data)),
		cmd.PageCount,
		key,
		Hash(cmd.Data),
		content,
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, args...)
	})
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrCaseNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "document created", "id", id, "case_id", cmd.CaseID, "filename", cmd.Filename)
	return r.Find(ctx, id)
}

func (r *repo) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*Document, error) {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"UPDATE documents SET content = $1, status = $2, updated_at = now() WHERE id = $3",
			content, StatusPending, id,
		)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "document content updated", "id", id)
	return r.Find(ctx, id)
}

func (r *repo) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE documents SET status = $1, updated_at = now() WHERE id = $2",
		status, id,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) Open(ctx context.Context, id uuid.UUID) (*Document, *storage.Blob, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	blob, err := r.storage.Download(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return doc, blob, nil
}

func (r *repo) StoreEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE documents SET embedding = $1, updated_at = now() WHERE id = $2",
		pgvector.NewVector(embedding), id,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) Similar(ctx context.Context, id uuid.UUID, limit int) ([]Similar, error) {
	if limit < 1 {
		limit = 5
	}

	var hasEmbedding bool
	err := r.db.QueryRowContext(
		ctx,
		"SELECT embedding IS NOT NULL FROM documents WHERE id = $1",
		id,
	).Scan(&hasEmbedding)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	if !hasEmbedding {
		return nil, ErrNoEmbedding
	}

	q := fmt.Sprintf(`
		SELECT %s, d.embedding <=> ref.embedding AS distance
		FROM %s, public.documents ref
		WHERE ref.id = $1
			AND d.case_id = ref.case_id
			AND d.id <> ref.id
			AND d.embedding IS NOT NULL
		ORDER BY distance
		LIMIT $2`,
		projection.Columns(), projection.From(),
	)

	items, err := repository.QueryMany(ctx, r.db, q, []any{id, limit}, scanSimilar)
	if err != nil {
		return nil, fmt.Errorf("query similar documents: %w", err)
	}
	return items, nil
}

// Hash returns the hex-encoded SHA-256 digest used to detect resubmissions.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func buildStorageKey(caseID, id uuid.UUID, filename string) string {
	return fmt.Sprintf("cases/%s/documents/%s/%s", caseID, id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == "/" {
		name = "document"
	}
	return url.PathEscape(name)
}
