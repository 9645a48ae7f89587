package cases

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a case repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "cases"),
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
) (*pagination.PageResult[Case], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "CaseNumber", "Title", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCase)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Case, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCase)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Case, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	filed := time.Now().UTC()
	if cmd.FiledDate != nil {
		filed = *cmd.FiledDate
	}

	q := `
		INSERT INTO cases(case_number, title, description, status, filed_date,
			contact_email, parties, tribunal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		` + returning

	args := []any{
		cmd.CaseNumber, cmd.Title, cmd.Description, StatusFiled, filed,
		cmd.ContactEmail, repository.JSONValue(nonNil(cmd.Parties)), repository.JSONValue(nonNil(cmd.Tribunal)),
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Case, error) {
		return repository.QueryOne(ctx, tx, q, args, scanCase)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "case created", "id", c.ID, "case_number", c.CaseNumber)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Case, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	q := `
		UPDATE cases
		SET title = $1, description = $2, status = $3, contact_email = $4,
			parties = $5, tribunal = $6, updated_at = now()
		WHERE id = $7
		` + returning

	args := []any{
		cmd.Title, cmd.Description, cmd.Status, cmd.ContactEmail,
		repository.JSONValue(nonNil(cmd.Parties)), repository.JSONValue(nonNil(cmd.Tribunal)), id,
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Case, error) {
		return repository.QueryOne(ctx, tx, q, args, scanCase)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "case updated", "id", c.ID, "status", c.Status)
	return &c, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
