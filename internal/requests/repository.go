package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/cases"
	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/pkg/events"
	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

type repo struct {
	db         *sql.DB
	cases      cases.System
	docs       documents.System
	events     events.Publisher
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document request repository implementing the System
// interface. publisher may be nil.
func New(
	db *sql.DB,
	cases cases.System,
	docs documents.System,
	publisher events.Publisher,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		cases:      cases,
		docs:       docs,
		events:     publisher,
		logger:     logger.With("system", "requests"),
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
) (*pagination.PageResult[Request], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "DocumentType", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count document requests: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("query document requests: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Request, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	req, err := repository.QueryOne(ctx, r.db, q, args, scanRequest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &req, nil
}

func (r *repo) Pending(ctx context.Context, caseID uuid.UUID) ([]Request, error) {
	pending := StatusPending
	q, args := query.
		NewBuilder(projection, query.SortField{Field: "CreatedAt"}).
		WhereEquals("CaseID", caseID).
		WhereEquals("Status", &pending).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("query pending requests: %w", err)
	}
	return items, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Request, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	c, err := r.cases.Find(ctx, cmd.CaseID)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO document_requests(case_id, requested_by, document_type, description, due_date)
		VALUES ($1, $2, $3, $4, $5)
		` + returning

	req, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Request, error) {
		return repository.QueryOne(ctx, tx, q,
			[]any{cmd.CaseID, cmd.RequestedBy, cmd.DocumentType, cmd.Description, cmd.DueDate},
			scanRequest,
		)
	})
	if err != nil {
		return nil, repository.MapError(err, cases.ErrNotFound, ErrNotFound)
	}

	r.logger.InfoContext(ctx, "document requested",
		"id", req.ID,
		"case_id", req.CaseID,
		"document_type", req.DocumentType,
	)

	r.publish(ctx, RequestedEvent{
		RequestID:    req.ID,
		CaseID:       c.ID,
		CaseNumber:   c.CaseNumber,
		ContactEmail: c.ContactEmail,
		RequestedBy:  req.RequestedBy,
		DocumentType: req.DocumentType,
		Description:  req.Description,
		DueDate:      req.DueDate,
	})
	return &req, nil
}

func (r *repo) Fulfill(ctx context.Context, id uuid.UUID, cmd FulfillCommand) (*Request, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	doc, err := r.docs.Find(ctx, cmd.DocumentID)
	if err != nil {
		return nil, err
	}

	q := `
		UPDATE document_requests
		SET status = 'fulfilled', document_id = $1, fulfilled_at = now()
		WHERE id = $2
		` + returning

	req, err := r.close(ctx, id, q, []any{doc.ID, id}, func(current Request) error {
		if current.CaseID != doc.CaseID {
			return fmt.Errorf("%w: document %s, request %s", ErrDocumentMismatch, doc.ID, current.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "document request fulfilled", "id", req.ID, "document_id", doc.ID)
	return req, nil
}

func (r *repo) Cancel(ctx context.Context, id uuid.UUID) (*Request, error) {
	q := `
		UPDATE document_requests
		SET status = 'cancelled'
		WHERE id = $1
		` + returning

	req, err := r.close(ctx, id, q, []any{id}, nil)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "document request cancelled", "id", req.ID)
	return req, nil
}

// close moves a pending request out of pending. The request row is locked
// while check runs and the update applies.
func (r *repo) close(
	ctx context.Context,
	id uuid.UUID,
	q string,
	args []any,
	check func(current Request) error,
) (*Request, error) {
	lock, lockArgs := query.NewBuilder(projection).BuildSingle("ID", id)

	req, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Request, error) {
		current, err := repository.QueryOne(ctx, tx, lock+" FOR UPDATE", lockArgs, scanRequest)
		if err != nil {
			return Request{}, err
		}
		if current.Status != StatusPending {
			return Request{}, fmt.Errorf("%w: status %s", ErrNotPending, current.Status)
		}
		if check != nil {
			if err := check(current); err != nil {
				return Request{}, err
			}
		}
		return repository.QueryOne(ctx, tx, q, args, scanRequest)
	})
	if err != nil {
		if errors.Is(err, ErrNotPending) || errors.Is(err, ErrDocumentMismatch) {
			return nil, err
		}
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &req, nil
}

func (r *repo) publish(ctx context.Context, data RequestedEvent) {
	if r.events == nil {
		return
	}

	e, err := events.New(EventRequested, data)
	if err == nil {
		err = r.events.Publish(ctx, e)
	}
	if err != nil {
		r.logger.WarnContext(ctx, "request event not published", "id", data.RequestID, "error", err)
	}
}
