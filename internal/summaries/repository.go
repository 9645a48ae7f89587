package summaries

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

type repo struct {
	db         *sql.DB
	engine     *Engine
	docs       documents.System
	cache      *cache.Cache
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a summary repository implementing the System interface.
// Summaries read by document are cached for cacheTTL.
func New(
	db *sql.DB,
	engine *Engine,
	docs documents.System,
	cacheTTL time.Duration,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		engine:     engine,
		docs:       docs,
		cache:      cache.New(cacheTTL, 2*cacheTTL),
		logger:     logger.With("system", "summaries"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Summary], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "ExecutiveSummary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count summaries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Summary, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSummary)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) FindByDocument(ctx context.Context, documentID uuid.UUID) (*Summary, error) {
	if cached, ok := r.cache.Get(documentID.String()); ok {
		return cached.(*Summary), nil
	}

	q, args := query.NewBuilder(projection).BuildSingle("DocumentID", documentID)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSummary)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.cache.Set(documentID.String(), &s, cache.DefaultExpiration)
	return &s, nil
}

func (r *repo) Create(ctx context.Context, documentID uuid.UUID, opts *Options) (*Summary, error) {
	generated, err := r.generate(ctx, documentID, opts)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO document_summaries(document_id, title, executive_summary,
			detailed_summary, key_points, sections, metadata, stats,
			confidence_scores, language, file_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		` + returning

	s, err := r.write(ctx, q, summaryArgs(generated))
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "summary created", "id", s.ID, "document_id", documentID)
	return s, nil
}

func (r *repo) Regenerate(ctx context.Context, documentID uuid.UUID, opts *Options) (*Summary, error) {
	generated, err := r.generate(ctx, documentID, opts)
	if err != nil {
		return nil, err
	}

	q := `
		UPDATE document_summaries
		SET title = $2, executive_summary = $3, detailed_summary = $4,
			key_points = $5, sections = $6, metadata = $7, stats = $8,
			confidence_scores = $9, language = $10, file_type = $11,
			updated_at = now()
		WHERE document_id = $1
		` + returning

	s, err := r.write(ctx, q, summaryArgs(generated))
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "summary regenerated", "id", s.ID, "document_id", documentID)
	return s, nil
}

func (r *repo) Delete(ctx context.Context, documentID uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM document_summaries WHERE document_id = $1",
		documentID,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.cache.Delete(documentID.String())
	r.logger.InfoContext(ctx, "summary deleted", "document_id", documentID)
	return nil
}

func (r *repo) SummarizeCase(ctx context.Context, caseID uuid.UUID, opts *Options) ([]BatchItem, error) {
	if opts != nil {
		if err := validation.Struct(opts); err != nil {
			return nil, err
		}
	}

	docs, err := r.docs.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	sources := make([]documents.Source, len(docs))
	for i := range docs {
		sources[i] = docs[i].Source()
	}

	results, err := r.engine.BatchSummarize(ctx, sources, opts)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO document_summaries(document_id, title, executive_summary,
			detailed_summary, key_points, sections, metadata, stats,
			confidence_scores, language, file_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (document_id) DO UPDATE SET
			title = EXCLUDED.title,
			executive_summary = EXCLUDED.executive_summary,
			detailed_summary = EXCLUDED.detailed_summary,
			key_points = EXCLUDED.key_points,
			sections = EXCLUDED.sections,
			metadata = EXCLUDED.metadata,
			stats = EXCLUDED.stats,
			confidence_scores = EXCLUDED.confidence_scores,
			language = EXCLUDED.language,
			file_type = EXCLUDED.file_type,
			updated_at = now()
		` + returning

	items := make([]BatchItem, len(results))
	for i, res := range results {
		items[i] = BatchItem{DocumentID: res.DocumentID}

		if res.Err != nil {
			items[i].Error = res.Err.Error()
			continue
		}

		s, err := r.write(ctx, q, summaryArgs(res.Summary))
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		items[i].Summary = s
	}

	r.logger.InfoContext(ctx, "case summarized", "case_id", caseID, "documents", len(items))
	return items, nil
}

func (r *repo) ExecutiveSummaries(ctx context.Context, caseID uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.document_id, s.executive_summary
		FROM public.document_summaries s
		JOIN public.documents d ON d.id = s.document_id
		WHERE d.case_id = $1`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("query executive summaries: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]string)
	for rows.Next() {
		var (
			id   uuid.UUID
			text string
		)
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scan executive summary: %w", err)
		}
		out[id] = text
	}
	return out, rows.Err()
}

func (r *repo) generate(ctx context.Context, documentID uuid.UUID, opts *Options) (*Summary, error) {
	if opts != nil {
		if err := validation.Struct(opts); err != nil {
			return nil, err
		}
	}

	doc, err := r.docs.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return r.engine.Summarize(ctx, doc.Source(), opts)
}

func (r *repo) write(ctx context.Context, q string, args []any) (*Summary, error) {
	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Summary, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSummary)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.cache.Set(s.DocumentID.String(), &s, cache.DefaultExpiration)
	return &s, nil
}

func summaryArgs(s *Summary) []any {
	var scores any
	if s.ConfidenceScores != nil {
		scores = repository.JSONValue(s.ConfidenceScores)
	}

	return []any{
		s.DocumentID,
		s.Title,
		s.ExecutiveSummary,
		s.DetailedSummary,
		repository.JSONValue(s.KeyPoints),
		repository.JSONValue(s.Sections),
		repository.JSONValue(s.Metadata),
		repository.JSONValue(s.Stats),
		scores,
		s.Metadata.Language,
		s.Metadata.FileType,
	}
}
