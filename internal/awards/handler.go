package awards

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/routes"
)

// Handler provides HTTP endpoints for award operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "awards"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for award endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/awards",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/preview", Handler: h.Preview},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/text", Handler: h.Render},
			{
				Method: "POST", Pattern: "", Handler: h.Generate,
				OpenAPI: awardOperation("Generate a draft award for a case", "GenerateCommand", http.StatusCreated, "BadRequest", "NotFound", "BadGateway"),
			},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{
				Method: "POST", Pattern: "/{id}/submit", Handler: h.Submit,
				OpenAPI: awardOperation("Submit an award for review", "SubmitCommand", http.StatusOK, "BadRequest", "NotFound", "Conflict"),
			},
			{
				Method: "POST", Pattern: "/{id}/reviews", Handler: h.Review,
				OpenAPI: awardOperation("Record a reviewer decision", "ProcessReviewCommand", http.StatusOK, "BadRequest", "NotFound", "Conflict"),
			},
			{
				Method: "POST", Pattern: "/{id}/finalize", Handler: h.Finalize,
				OpenAPI: awardOperation("Finalize an approved award", "FinalizeCommand", http.StatusOK, "BadRequest", "NotFound", "Conflict"),
			},
			{
				Method: "PUT", Pattern: "/{id}/sections/{sectionId}", Handler: h.Revise,
				OpenAPI: awardOperation("Revise a section's content", "ReviseCommand", http.StatusOK, "BadRequest", "NotFound", "Conflict"),
			},
		},
	}
}

// List returns a paginated list of awards with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Preview returns the aggregated material of the case named by the case_id
// query parameter.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	caseID, err := uuid.Parse(r.URL.Query().Get("case_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrCaseNotFound)
		return
	}

	data, err := h.sys.Preview(r.Context(), caseID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, data)
}

// Find returns an award with its sections and reviews.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.awardID(w, r)
	if !ok {
		return
	}

	a, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Render returns the full award text as plain text.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	id, ok := h.awardID(w, r)
	if !ok {
		return
	}

	text, err := h.sys.Render(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// Generate drafts the next award of a case.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.Decode[GenerateCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	a, err := h.sys.GenerateDraft(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, a)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching awards.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.Decode[SearchRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Submit opens review of an award.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.awardID(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.Decode[SubmitCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	a, err := h.sys.SubmitForReview(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Review records a reviewer's verdict.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := h.awardID(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.Decode[ProcessReviewCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	a, err := h.sys.ProcessReview(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Finalize closes an approved award.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := h.awardID(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.Decode[FinalizeCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	a, err := h.sys.Finalize(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Revise replaces the content of a section.
func (h *Handler) Revise(w http.ResponseWriter, r *http.Request) {
	id, ok := h.awardID(w, r)
	if !ok {
		return
	}

	sectionID, err := uuid.Parse(r.PathValue("sectionId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrSectionNotFound)
		return
	}

	cmd, err := handlers.Decode[ReviseCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	a, err := h.sys.ReviseSection(r.Context(), id, sectionID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

func (h *Handler) awardID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
