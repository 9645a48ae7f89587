package awards

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/templates"
	"github.com/JaimeStill/arbiter/pkg/events"
	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/validation"
)

// Renderer produces the text of a section from its data.
type Renderer interface {
	Render(ctx context.Context, key templates.Key, data any) (string, error)
}

// SectionData is the value section templates execute against.
type SectionData struct {
	Award   string
	Title   string
	Case    CaseInfo
	Entries []Entry
}

// sectionBuckets maps each section to the bucket it renders. The
// introduction draws on case metadata only.
var sectionBuckets = map[templates.Key]Bucket{
	templates.KeyProceduralHistory: BucketProceduralHistory,
	templates.KeyFactualBackground: BucketFactualBackground,
	templates.KeyPartiesPositions:  BucketLegalAnalysis,
	templates.KeyTribunalAnalysis:  BucketEvidence,
	templates.KeyDecision:          BucketDecisions,
}

// Workflow drives awards through their lifecycle over a Store.
type Workflow struct {
	store      Store
	aggregator CaseAggregator
	renderer   Renderer
	events     events.Publisher
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the workflow logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = l.With("system", "awards")
	}
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithPublisher sets the publisher for award lifecycle events.
func WithPublisher(p events.Publisher) Option {
	return func(w *Workflow) {
		w.events = p
	}
}

// WithPagination sets the paging limits for List.
func WithPagination(cfg pagination.Config) Option {
	return func(w *Workflow) {
		w.pagination = cfg
	}
}

// NewWorkflow creates a Workflow.
func NewWorkflow(store Store, aggregator CaseAggregator, renderer Renderer, opts ...Option) *Workflow {
	w := &Workflow{
		store:      store,
		aggregator: aggregator,
		renderer:   renderer,
		logger:     slog.New(slog.DiscardHandler),
		pagination: pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) Handler() *Handler {
	return NewHandler(w, w.logger, w.pagination)
}

func (w *Workflow) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Award], error) {
	page.Normalize(w.pagination)

	items, total, err := w.store.List(ctx, page, filters)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (w *Workflow) Find(ctx context.Context, id uuid.UUID) (*Award, error) {
	return w.store.Find(ctx, id)
}

func (w *Workflow) Preview(ctx context.Context, caseID uuid.UUID) (*CaseData, error) {
	return w.aggregator.Aggregate(ctx, caseID)
}

func (w *Workflow) GenerateDraft(ctx context.Context, cmd GenerateCommand) (*Award, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	data, err := w.aggregator.Aggregate(ctx, cmd.CaseID)
	if err != nil {
		return nil, err
	}

	now := w.now().UTC()
	award := Award{
		ID:        uuid.New(),
		CaseID:    cmd.CaseID,
		Title:     "Award - Case " + data.Case.Number,
		Status:    StatusDraft,
		CreatedBy: cmd.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	sections, err := w.render(ctx, award, data)
	if err != nil {
		return nil, err
	}

	err = w.store.InTx(ctx, func(tx Tx) error {
		version, err := tx.NextVersion(ctx, award.CaseID)
		if err != nil {
			return err
		}
		award.Version = version

		if err := tx.InsertAward(ctx, &award); err != nil {
			return err
		}
		for i := range sections {
			if err := tx.InsertSection(ctx, &sections[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	award.Sections = sections

	w.logger.InfoContext(ctx, "award drafted",
		"id", award.ID,
		"case_id", award.CaseID,
		"version", award.Version,
	)
	w.publish(ctx, EventDrafted, &award, cmd.CreatedBy)
	return &award, nil
}

// render builds the six sections of a draft in template order.
func (w *Workflow) render(ctx context.Context, award Award, data *CaseData) ([]Section, error) {
	keys := templates.Keys()
	sections := make([]Section, 0, len(keys))

	for i, key := range keys {
		var entries []Entry
		if b, ok := sectionBuckets[key]; ok {
			entries = data.Entries(b)
		}

		content, err := w.renderer.Render(ctx, key, SectionData{
			Award:   award.Title,
			Title:   key.Title(),
			Case:    data.Case,
			Entries: entries,
		})
		if err != nil {
			return nil, &SectionError{Section: key, Err: err}
		}

		ids := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.DocumentID)
		}

		sections = append(sections, Section{
			ID:          uuid.New(),
			AwardID:     award.ID,
			Key:         key,
			Title:       key.Title(),
			Content:     content,
			Order:       i,
			Status:      SectionDraft,
			Version:     1,
			AIGenerated: true,
			DocumentIDs: ids,
			CreatedAt:   award.CreatedAt,
			UpdatedAt:   award.CreatedAt,
		})
	}

	return sections, nil
}

// SubmitForReview opens review of a draft award, or reopens it after a
// revision request. Each distinct reviewer holds one pending review. On
// resubmission every earlier reviewer is reset to pending alongside the
// listed ones, so no verdict from the previous round decides the next.
func (w *Workflow) SubmitForReview(ctx context.Context, id uuid.UUID, cmd SubmitCommand) (*Award, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	reviewers := slices.Compact(slices.Sorted(slices.Values(cmd.ReviewerIDs)))

	award, err := w.mutate(ctx, id, func(tx Tx, a *Award, now time.Time) error {
		if a.Status != StatusDraft && a.Status != StatusRevisionRequested {
			return fmt.Errorf("%w: cannot submit award in status %s", ErrInvalidTransition, a.Status)
		}

		for _, reviewer := range reviewers {
			if _, ok := a.Review(reviewer); !ok {
				a.Reviews = append(a.Reviews, Review{
					ID:         uuid.New(),
					AwardID:    a.ID,
					ReviewerID: reviewer,
					CreatedAt:  now,
				})
			}
		}

		for i := range a.Reviews {
			r := &a.Reviews[i]
			r.Status = ReviewPending
			r.Comments = nil
			r.UpdatedAt = now

			if err := tx.SaveReview(ctx, r); err != nil {
				return err
			}
		}

		for i := range a.Sections {
			s := &a.Sections[i]
			if s.Status != SectionDraft {
				continue
			}
			s.Status = SectionUnderReview
			s.UpdatedAt = now
			if err := tx.UpdateSection(ctx, s); err != nil {
				return err
			}
		}

		a.Status = StatusUnderReview
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "award submitted for review", "id", award.ID, "reviewers", reviewers)
	w.publish(ctx, EventSubmitted, award, strings.Join(reviewers, ","))
	return award, nil
}

// ProcessReview records a reviewer's verdict and any section decisions,
// then re-evaluates consensus over the full review set. Verdicts may change
// until the award is final; a draft award has no open review.
func (w *Workflow) ProcessReview(ctx context.Context, id uuid.UUID, cmd ProcessReviewCommand) (*Award, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	award, err := w.mutate(ctx, id, func(tx Tx, a *Award, now time.Time) error {
		if a.Status == StatusDraft || a.Status == StatusFinal {
			return fmt.Errorf("%w: award in status %s is not open for review", ErrInvalidTransition, a.Status)
		}

		r, ok := a.Review(cmd.ReviewerID)
		if !ok {
			return fmt.Errorf("%w: reviewer %s on award %s", ErrReviewNotFound, cmd.ReviewerID, a.ID)
		}
		r.Status = cmd.Status
		r.Comments = cmd.Comments
		r.UpdatedAt = now
		if err := tx.SaveReview(ctx, r); err != nil {
			return err
		}

		for _, d := range cmd.SectionReviews {
			s, ok := a.Section(d.SectionID)
			if !ok {
				return fmt.Errorf("%w: %s on award %s", ErrSectionNotFound, d.SectionID, a.ID)
			}

			sr := SectionReview{
				ID:         uuid.New(),
				SectionID:  s.ID,
				ReviewerID: cmd.ReviewerID,
				Status:     d.Status,
				Comments:   d.Comments,
				CreatedAt:  now,
			}
			if err := tx.InsertSectionReview(ctx, &sr); err != nil {
				return err
			}
			s.Reviews = append(s.Reviews, sr)

			s.Status = SectionApproved
			if d.Status == ReviewRejected {
				s.Status = SectionNeedsRevision
			}
			s.UpdatedAt = now
			if err := tx.UpdateSection(ctx, s); err != nil {
				return err
			}
		}

		a.Status = Evaluate(a.Status, a.Reviews)
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "award review processed",
		"id", award.ID,
		"reviewer_id", cmd.ReviewerID,
		"verdict", cmd.Status,
		"status", award.Status,
	)
	w.publish(ctx, EventReviewed, award, cmd.ReviewerID)
	return award, nil
}

// Finalize closes an approved award. Any other status is
// ErrInvalidTransition and leaves the award untouched.
func (w *Workflow) Finalize(ctx context.Context, id uuid.UUID, cmd FinalizeCommand) (*Award, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	award, err := w.mutate(ctx, id, func(_ Tx, a *Award, now time.Time) error {
		if a.Status != StatusApproved {
			return fmt.Errorf("%w: cannot finalize award in status %s", ErrInvalidTransition, a.Status)
		}

		a.Status = StatusFinal
		a.ApprovedBy = &cmd.ApprovedBy
		a.FinalizedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "award finalized", "id", award.ID, "approved_by", cmd.ApprovedBy)
	w.publish(ctx, EventFinalized, award, cmd.ApprovedBy)
	return award, nil
}

func (w *Workflow) ReviseSection(ctx context.Context, id, sectionID uuid.UUID, cmd ReviseCommand) (*Award, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	award, err := w.mutate(ctx, id, func(tx Tx, a *Award, now time.Time) error {
		if a.Status != StatusDraft && a.Status != StatusRevisionRequested {
			return fmt.Errorf("%w: award in status %s is not open for edits", ErrInvalidTransition, a.Status)
		}

		s, ok := a.Section(sectionID)
		if !ok {
			return fmt.Errorf("%w: %s on award %s", ErrSectionNotFound, sectionID, a.ID)
		}
		if s.Status != SectionDraft && s.Status != SectionNeedsRevision {
			return fmt.Errorf("%w: section in status %s cannot be revised", ErrInvalidTransition, s.Status)
		}

		s.Content = cmd.Content
		s.Version++
		s.AIGenerated = false
		s.Status = SectionDraft
		s.UpdatedAt = now
		return tx.UpdateSection(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "award section revised", "id", award.ID, "section_id", sectionID)
	return award, nil
}

func (w *Workflow) Render(ctx context.Context, id uuid.UUID) (string, error) {
	a, err := w.store.Find(ctx, id)
	if err != nil {
		return "", err
	}

	sections := slices.Clone(a.Sections)
	slices.SortFunc(sections, func(x, y Section) int { return x.Order - y.Order })

	parts := make([]string, 0, len(sections)+1)
	parts = append(parts, strings.ToUpper(a.Title))
	for _, s := range sections {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

// mutate locks an award, applies fn and writes the award row in one
// transaction. fn sees the clock reading shared by the whole operation.
func (w *Workflow) mutate(
	ctx context.Context,
	id uuid.UUID,
	fn func(tx Tx, a *Award, now time.Time) error,
) (*Award, error) {
	var award *Award

	err := w.store.InTx(ctx, func(tx Tx) error {
		a, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}

		now := w.now().UTC()
		if err := fn(tx, a, now); err != nil {
			return err
		}

		a.UpdatedAt = now
		if err := tx.UpdateAward(ctx, a); err != nil {
			return err
		}
		award = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return award, nil
}

func (w *Workflow) publish(ctx context.Context, eventType string, a *Award, actor string) {
	if w.events == nil {
		return
	}

	e, err := events.New(eventType, AwardEvent{
		AwardID: a.ID,
		CaseID:  a.CaseID,
		Title:   a.Title,
		Version: a.Version,
		Status:  a.Status,
		Actor:   actor,
	})
	if err == nil {
		err = w.events.Publish(ctx, e)
	}
	if err != nil {
		w.logger.WarnContext(ctx, "award event not published", "id", a.ID, "type", eventType, "error", err)
	}
}
