package awards

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/query"
	"github.com/JaimeStill/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "awards", "a").
	Project("id", "ID").
	Project("case_id", "CaseID").
	Project("title", "Title").
	Project("version", "Version").
	Project("status", "Status").
	Project("created_by", "CreatedBy").
	Project("approved_by", "ApprovedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Project("finalized_at", "FinalizedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const sectionsQuery = `
	SELECT s.id, s.award_id, s.section_key, s.title, s.content, s.section_order,
		s.status, s.version, s.ai_generated,
		COALESCE((
			SELECT jsonb_agg(d.document_id ORDER BY d.document_id)
			FROM public.section_documents d WHERE d.section_id = s.id
		), '[]'::jsonb),
		s.created_at, s.updated_at
	FROM public.award_sections s
	WHERE s.award_id = $1
	ORDER BY s.section_order`

const reviewsQuery = `
	SELECT r.id, r.award_id, r.reviewer_id, r.status, r.comments, r.created_at, r.updated_at
	FROM public.award_reviews r
	WHERE r.award_id = $1
	ORDER BY r.created_at, r.reviewer_id`

const sectionReviewsQuery = `
	SELECT sr.id, sr.section_id, sr.reviewer_id, sr.status, sr.comments, sr.created_at
	FROM public.section_reviews sr
	JOIN public.award_sections s ON s.id = sr.section_id
	WHERE s.award_id = $1
	ORDER BY sr.created_at`

// Filters contains optional filtering criteria for award queries. All
// fields use exact matching.
type Filters struct {
	CaseID    *uuid.UUID `json:"case_id,omitempty"`
	Status    *Status    `json:"status,omitempty"`
	CreatedBy *string    `json:"created_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CaseID", f.CaseID).
		WhereEquals("Status", f.Status).
		WhereEquals("CreatedBy", f.CreatedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("case_id"); c != "" {
		if id, err := uuid.Parse(c); err == nil {
			f.CaseID = &id
		}
	}

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}

	if c := values.Get("created_by"); c != "" {
		f.CreatedBy = &c
	}

	return f
}

func scanAward(s repository.Scanner) (Award, error) {
	var a Award
	err := s.Scan(
		&a.ID,
		&a.CaseID,
		&a.Title,
		&a.Version,
		&a.Status,
		&a.CreatedBy,
		&a.ApprovedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.FinalizedAt,
	)
	return a, err
}

func scanSection(s repository.Scanner) (Section, error) {
	var sec Section
	err := s.Scan(
		&sec.ID,
		&sec.AwardID,
		&sec.Key,
		&sec.Title,
		&sec.Content,
		&sec.Order,
		&sec.Status,
		&sec.Version,
		&sec.AIGenerated,
		repository.JSONScanner(&sec.DocumentIDs),
		&sec.CreatedAt,
		&sec.UpdatedAt,
	)
	return sec, err
}

func scanReview(s repository.Scanner) (Review, error) {
	var r Review
	err := s.Scan(
		&r.ID,
		&r.AwardID,
		&r.ReviewerID,
		&r.Status,
		&r.Comments,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func scanSectionReview(s repository.Scanner) (SectionReview, error) {
	var sr SectionReview
	err := s.Scan(
		&sr.ID,
		&sr.SectionID,
		&sr.ReviewerID,
		&sr.Status,
		&sr.Comments,
		&sr.CreatedAt,
	)
	return sr, err
}
