package templates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

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

// New creates a template repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "templates"),
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
) (*pagination.PageResult[Template], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count templates: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Template, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTemplate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Template, error) {
	if err := check(cmd.Section, cmd.Body, cmd); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO section_templates(name, section_key, body, description)
		VALUES ($1, $2, $3, $4)
		` + returning

	args := []any{cmd.Name, cmd.Section, cmd.Body, cmd.Description}

	t, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Template, error) {
		return repository.QueryOne(ctx, tx, q, args, scanTemplate)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "template created", "id", t.ID, "name", t.Name, "section", t.Section)
	return &t, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Template, error) {
	if err := check(cmd.Section, cmd.Body, cmd); err != nil {
		return nil, err
	}

	q := `
		UPDATE section_templates
		SET name = $1, section_key = $2, body = $3, description = $4,
			active = active AND section_key = $2, updated_at = now()
		WHERE id = $5
		` + returning

	args := []any{cmd.Name, cmd.Section, cmd.Body, cmd.Description, id}

	t, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Template, error) {
		return repository.QueryOne(ctx, tx, q, args, scanTemplate)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "template updated", "id", t.ID, "name", t.Name)
	return &t, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM section_templates WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "template deleted", "id", id)
	return nil
}

func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Template, error) {
	t, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Template, error) {
		findQ, findArgs := query.NewBuilder(projection).BuildSingle("ID", id)
		target, err := repository.QueryOne(ctx, tx, findQ, findArgs, scanTemplate)
		if err != nil {
			return Template{}, err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE section_templates SET active = false, updated_at = now() WHERE section_key = $1 AND active",
			target.Section,
		)
		if err != nil {
			return Template{}, fmt.Errorf("deactivate current: %w", err)
		}

		activateQ := `
			UPDATE section_templates SET active = true, updated_at = now()
			WHERE id = $1
			` + returning

		return repository.QueryOne(ctx, tx, activateQ, []any{id}, scanTemplate)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "template activated", "id", t.ID, "name", t.Name, "section", t.Section)
	return &t, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Template, error) {
	q := `
		UPDATE section_templates SET active = false, updated_at = now()
		WHERE id = $1
		` + returning

	t, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanTemplate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "template deactivated", "id", t.ID, "name", t.Name, "section", t.Section)
	return &t, nil
}

func (r *repo) Resolve(ctx context.Context, key Key) (string, error) {
	if _, err := ParseKey(string(key)); err != nil {
		return "", err
	}

	var body string
	err := r.db.QueryRowContext(ctx,
		"SELECT body FROM section_templates WHERE section_key = $1 AND active",
		key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Default(key)
	}
	if err != nil {
		return "", fmt.Errorf("resolve template %s: %w", key, err)
	}
	return body, nil
}

// check validates a command and confirms its body parses.
func check(key Key, body string, cmd any) error {
	if err := validation.Struct(cmd); err != nil {
		return err
	}
	_, err := Parse(key, body)
	return err
}
