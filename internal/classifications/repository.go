package classifications

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/internal/models"
	"github.com/JaimeStill/arbiter/pkg/events"
	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

type repo struct {
	db         *sql.DB
	engine     *Engine
	docs       documents.System
	model      models.Model
	events     events.Publisher
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a classification repository implementing the System interface.
// model supplies document embeddings; publisher may be nil.
func New(
	db *sql.DB,
	engine *Engine,
	docs documents.System,
	model models.Model,
	publisher events.Publisher,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		engine:     engine,
		docs:       docs,
		model:      model,
		events:     publisher,
		logger:     logger.With("system", "classifications"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.engine.Hierarchy(), r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Classification], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ReviewReason")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Classification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) FindByDocument(ctx context.Context, documentID uuid.UUID) (*Classification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("DocumentID", documentID)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) ListByCase(ctx context.Context, caseID uuid.UUID) (map[uuid.UUID]Classification, error) {
	q, args := query.NewBuilder(projection).WhereEquals("CaseID", caseID).Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query case classifications: %w", err)
	}

	byDoc := make(map[uuid.UUID]Classification, len(items))
	for _, c := range items {
		byDoc[c.DocumentID] = c
	}
	return byDoc, nil
}

func (r *repo) Classify(ctx context.Context, documentID uuid.UUID) (*Classification, error) {
	doc, err := r.docs.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}

	result, err := r.engine.Categorize(ctx, doc.Source())
	if err != nil {
		return nil, err
	}

	c, err := r.store(ctx, result)
	if err != nil {
		return nil, err
	}

	r.embed(ctx, doc)
	r.publish(ctx, c)
	return c, nil
}

func (r *repo) ClassifyCase(ctx context.Context, caseID uuid.UUID) ([]BatchItem, error) {
	docs, err := r.docs.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	sources := make([]documents.Source, len(docs))
	for i := range docs {
		sources[i] = docs[i].Source()
	}

	results, err := r.engine.BatchCategorize(ctx, sources)
	if err != nil {
		return nil, err
	}

	items := make([]BatchItem, len(results))
	for i, res := range results {
		items[i] = BatchItem{DocumentID: res.DocumentID}

		if res.Err != nil {
			items[i].Error = *res.ReviewReason
			continue
		}

		c, err := r.store(ctx, res)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		items[i].Classification = c

		r.embed(ctx, &docs[i])
		r.publish(ctx, c)
	}

	r.logger.InfoContext(ctx, "case classified", "case_id", caseID, "documents", len(items))
	return items, nil
}

func (r *repo) Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Classification, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	q := projected(`
		UPDATE classifications
		SET validated_by = $1, validated_at = now(), requires_review = false,
			review_reason = NULL, updated_at = now()
		WHERE id = $2`)

	c, err := r.review(ctx, q, []any{cmd.ValidatedBy, id})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "classification validated", "id", c.ID, "validated_by", cmd.ValidatedBy)
	return c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Classification, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	q := projected(`
		UPDATE classifications
		SET categories = $1, validated_by = $2, validated_at = now(),
			requires_review = false, review_reason = NULL, updated_at = now()
		WHERE id = $3`)

	c, err := r.review(ctx, q, []any{repository.JSONValue(cmd.Categories), cmd.UpdatedBy, id})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "classification updated", "id", c.ID, "updated_by", cmd.UpdatedBy)
	r.publish(ctx, c)
	return c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var documentID uuid.UUID
		err := tx.QueryRowContext(ctx,
			"DELETE FROM classifications WHERE id = $1 RETURNING document_id",
			id,
		).Scan(&documentID)
		if err != nil {
			return struct{}{}, err
		}

		return struct{}{}, setDocumentStatus(ctx, tx, documentID, documents.StatusPending)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "classification deleted", "id", id)
	return nil
}

// review applies a human decision and marks the document classified.
func (r *repo) review(ctx context.Context, q string, args []any) (*Classification, error) {
	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Classification, error) {
		cl, err := repository.QueryOne(ctx, tx, q, args, scanClassification)
		if err != nil {
			return Classification{}, err
		}
		return cl, setDocumentStatus(ctx, tx, cl.DocumentID, documents.StatusClassified)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) store(ctx context.Context, res Result) (*Classification, error) {
	q := projected(`
		INSERT INTO classifications(document_id, categories, scores, requires_review,
			review_reason, metadata, classified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (document_id) DO UPDATE SET
			categories = EXCLUDED.categories,
			scores = EXCLUDED.scores,
			requires_review = EXCLUDED.requires_review,
			review_reason = EXCLUDED.review_reason,
			metadata = EXCLUDED.metadata,
			classified_at = EXCLUDED.classified_at,
			validated_by = NULL,
			validated_at = NULL,
			updated_at = now()`)

	args := []any{
		res.DocumentID,
		repository.JSONValue(res.Categories),
		repository.JSONValue(res.Scores),
		res.RequiresReview,
		res.ReviewReason,
		repository.JSONValue(res.Metadata),
		res.ClassifiedAt,
	}

	status := documents.StatusClassified
	if res.RequiresReview {
		status = documents.StatusReview
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Classification, error) {
		cl, err := repository.QueryOne(ctx, tx, q, args, scanClassification)
		if err != nil {
			return Classification{}, fmt.Errorf("upsert classification: %w", err)
		}
		return cl, setDocumentStatus(ctx, tx, res.DocumentID, status)
	})
	if err != nil {
		return nil, repository.MapError(err, documents.ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "document classified",
		"id", c.ID,
		"document_id", c.DocumentID,
		"categories", c.Categories,
		"requires_review", c.RequiresReview,
	)
	return &c, nil
}

// embed stores the document embedding used for similarity search. Failures
// are logged; the classification stands without it.
func (r *repo) embed(ctx context.Context, doc *documents.Document) {
	if doc.Content == nil || *doc.Content == "" {
		return
	}

	vec, err := r.model.Embed(ctx, *doc.Content)
	if err != nil {
		r.logger.WarnContext(ctx, "document embedding failed", "document_id", doc.ID, "error", err)
		return
	}

	if err := r.docs.StoreEmbedding(ctx, doc.ID, vec); err != nil {
		r.logger.WarnContext(ctx, "document embedding not stored", "document_id", doc.ID, "error", err)
	}
}

func (r *repo) publish(ctx context.Context, c *Classification) {
	if r.events == nil {
		return
	}

	e, err := events.New(EventClassified, ClassifiedEvent{
		DocumentID:     c.DocumentID,
		CaseID:         c.CaseID,
		Categories:     c.Categories,
		RequiresReview: c.RequiresReview,
	})
	if err == nil {
		err = r.events.Publish(ctx, e)
	}
	if err != nil {
		r.logger.WarnContext(ctx, "classification event not published", "document_id", c.DocumentID, "error", err)
	}
}

func setDocumentStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status documents.Status) error {
	return repository.ExecExpectOne(
		ctx, tx,
		"UPDATE documents SET status = $1, updated_at = now() WHERE id = $2",
		status, id,
	)
}
