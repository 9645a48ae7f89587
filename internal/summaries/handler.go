package summaries

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/routes"
)

// Handler provides HTTP endpoints for summary operations.
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
		logger:     logger.With("handler", "summaries"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for summary endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/summaries",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/document/{documentId}", Handler: h.FindByDocument},
			{Method: "POST", Pattern: "/document/{documentId}", Handler: h.Create},
			{Method: "PUT", Pattern: "/document/{documentId}", Handler: h.Regenerate},
			{Method: "DELETE", Pattern: "/document/{documentId}", Handler: h.Delete},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/batch", Handler: h.SummarizeCase},
		},
	}
}

// List returns a paginated list of summaries with optional query parameter filters.
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

// Find returns a single summary by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	s, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// FindByDocument returns the summary of the document in the path.
func (h *Handler) FindByDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	s, err := h.sys.FindByDocument(r.Context(), documentID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Create summarizes the document in the path. An optional JSON body
// overrides summarization options. Returns 201 with the stored summary.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	documentID, opts, ok := h.documentRequest(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Create(r.Context(), documentID, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s)
}

// Regenerate replaces the summary of the document in the path.
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	documentID, opts, ok := h.documentRequest(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Regenerate(r.Context(), documentID, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Delete removes the summary of the document in the path.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), documentID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching summaries.
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

// SummarizeCase summarizes every document of the case named in the body.
func (h *Handler) SummarizeCase(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.Decode[BatchCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	items, err := h.sys.SummarizeCase(r.Context(), cmd.CaseID, cmd.Options)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// documentRequest reads the document id and the optional options body.
func (h *Handler) documentRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, *Options, bool) {
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, nil, false
	}

	opts, err := handlers.Decode[*Options](r)
	if err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return uuid.Nil, nil, false
	}

	return documentID, opts, true
}
