package awards

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/events"
	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
)

// New creates the award system over PostgreSQL. publisher may be nil.
func New(
	db *sql.DB,
	aggregator CaseAggregator,
	renderer Renderer,
	publisher events.Publisher,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return NewWorkflow(
		NewStore(db),
		aggregator,
		renderer,
		WithPublisher(publisher),
		WithLogger(logger),
		WithPagination(pagination),
	)
}

type repo struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL Store. Lock takes the award row with
// SELECT ... FOR UPDATE.
func NewStore(db *sql.DB) Store {
	return &repo{db: db}
}

func (r *repo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, fn(&pgTx{tx: tx})
	})
	return err
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Award, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	return load(ctx, r.db, q, args)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) ([]Award, int, error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count awards: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAward)
	if err != nil {
		return nil, 0, fmt.Errorf("query awards: %w", err)
	}

	return items, total, nil
}

// load reads the award selected by q with its sections and reviews.
func load(ctx context.Context, q repository.Querier, sqlText string, args []any) (*Award, error) {
	a, err := repository.QueryOne(ctx, q, sqlText, args, scanAward)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	sections, err := repository.QueryMany(ctx, q, sectionsQuery, []any{a.ID}, scanSection)
	if err != nil {
		return nil, fmt.Errorf("query award sections: %w", err)
	}

	reviews, err := repository.QueryMany(ctx, q, reviewsQuery, []any{a.ID}, scanReview)
	if err != nil {
		return nil, fmt.Errorf("query award reviews: %w", err)
	}

	sectionReviews, err := repository.QueryMany(ctx, q, sectionReviewsQuery, []any{a.ID}, scanSectionReview)
	if err != nil {
		return nil, fmt.Errorf("query section reviews: %w", err)
	}

	for _, sr := range sectionReviews {
		for i := range sections {
			if sections[i].ID == sr.SectionID {
				sections[i].Reviews = append(sections[i].Reviews, sr)
				break
			}
		}
	}

	a.Sections = sections
	a.Reviews = reviews
	return &a, nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) Lock(ctx context.Context, id uuid.UUID) (*Award, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	return load(ctx, t.tx, q+" FOR UPDATE", args)
}

func (t *pgTx) NextVersion(ctx context.Context, caseID uuid.UUID) (int, error) {
	var version int
	err := t.tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) + 1 FROM public.awards WHERE case_id = $1",
		caseID,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("next award version: %w", err)
	}
	return version, nil
}

func (t *pgTx) InsertAward(ctx context.Context, a *Award) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO public.awards(id, case_id, title, version, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.CaseID, a.Title, a.Version, a.Status, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return repository.MapError(err, ErrCaseNotFound, ErrDuplicate)
	}
	return nil
}

func (t *pgTx) UpdateAward(ctx context.Context, a *Award) error {
	err := repository.ExecExpectOne(ctx, t.tx, `
		UPDATE public.awards
		SET status = $1, approved_by = $2, finalized_at = $3, updated_at = $4
		WHERE id = $5`,
		a.Status, a.ApprovedBy, a.FinalizedAt, a.UpdatedAt, a.ID,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (t *pgTx) InsertSection(ctx context.Context, s *Section) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO public.award_sections(id, award_id, section_key, title, content,
			section_order, status, version, ai_generated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.AwardID, s.Key, s.Title, s.Content,
		s.Order, s.Status, s.Version, s.AIGenerated, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert section %s: %w", s.Key, err)
	}

	for _, docID := range s.DocumentIDs {
		_, err := t.tx.ExecContext(ctx,
			"INSERT INTO public.section_documents(section_id, document_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			s.ID, docID,
		)
		if err != nil {
			return fmt.Errorf("link section %s document %s: %w", s.Key, docID, err)
		}
	}
	return nil
}

func (t *pgTx) UpdateSection(ctx context.Context, s *Section) error {
	err := repository.ExecExpectOne(ctx, t.tx, `
		UPDATE public.award_sections
		SET content = $1, status = $2, version = $3, ai_generated = $4, updated_at = $5
		WHERE id = $6`,
		s.Content, s.Status, s.Version, s.AIGenerated, s.UpdatedAt, s.ID,
	)
	return repository.MapError(err, ErrSectionNotFound, ErrDuplicate)
}

func (t *pgTx) SaveReview(ctx context.Context, r *Review) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO public.award_reviews(id, award_id, reviewer_id, status, comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (award_id, reviewer_id) DO UPDATE SET
			status = EXCLUDED.status,
			comments = EXCLUDED.comments,
			updated_at = EXCLUDED.updated_at`,
		r.ID, r.AwardID, r.ReviewerID, r.Status, r.Comments, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save review %s: %w", r.ReviewerID, err)
	}
	return nil
}

func (t *pgTx) InsertSectionReview(ctx context.Context, sr *SectionReview) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO public.section_reviews(id, section_id, reviewer_id, status, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sr.ID, sr.SectionID, sr.ReviewerID, sr.Status, sr.Comments, sr.CreatedAt,
	)
	if err != nil {
		return repository.MapError(err, ErrSectionNotFound, ErrDuplicate)
	}
	return nil
}
