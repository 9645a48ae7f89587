package documents

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/arbiter/pkg/handlers"
	"github.com/JaimeStill/arbiter/pkg/pagination"
	"github.com/JaimeStill/arbiter/pkg/routes"
)

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
	limits     UploadLimits
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload limits.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	limits UploadLimits,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "documents"),
		pagination: pagination,
		limits:     limits,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/file", Handler: h.Download},
			{Method: "GET", Pattern: "/{id}/similar", Handler: h.Similar},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/batch", Handler: h.UploadBatch},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "PUT", Pattern: "/{id}/content", Handler: h.UpdateContent},
		},
	}
}

// List returns a paginated list of documents with optional query parameter filters.
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

// Find returns a single document by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Download streams the original uploaded file.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	doc, blob, err := h.sys.Open(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	contentType := blob.ContentType
	if contentType == "" {
		contentType = doc.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(doc.Filename)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, blob.Body)
}

// Similar returns documents of the same case ranked by embedding distance.
// The optional limit query parameter defaults to 5.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.sys.Similar(r.Context(), id, limit)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching documents.
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

// UpdateContent replaces the extracted text of a document, returning it to
// pending so it is analyzed again.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	cmd, err := handlers.Decode[ContentCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.UpdateContent(r.Context(), id, cmd.Content)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Upload processes a multipart form containing a file, the owning case_id,
// and optional title and content fields. PDF page counts are extracted with
// pdfcpu.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxSize)
	if err := r.ParseMultipartForm(h.limits.MaxSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	caseID, err := uuid.Parse(r.FormValue("case_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: case_id", ErrInvalidFile))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	cmd, err := h.buildCommand(caseID, file, header)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	cmd.Title = r.FormValue("title")
	if c := r.FormValue("content"); c != "" {
		cmd.Content = &c
	}

	doc, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// UploadBatch accepts several files for one case under the "files" form key.
// Each file succeeds or fails independently; the response lists one result
// per file in submission order.
func (h *Handler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxSize*int64(max(h.limits.MaxBatch, 1)))
	if err := r.ParseMultipartForm(h.limits.MaxSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	caseID, err := uuid.Parse(r.FormValue("case_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: case_id", ErrInvalidFile))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	if h.limits.MaxBatch > 0 && len(headers) > h.limits.MaxBatch {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrBatchTooLarge)
		return
	}

	results := make([]BatchResult, len(headers))
	for i, header := range headers {
		results[i] = BatchResult{Filename: header.Filename}

		doc, err := h.uploadPart(r, caseID, header)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		results[i].Document = doc
	}

	handlers.RespondJSON(w, http.StatusMultiStatus, results)
}

func (h *Handler) uploadPart(r *http.Request, caseID uuid.UUID, header *multipart.FileHeader) (*Document, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	defer file.Close()

	cmd, err := h.buildCommand(caseID, file, header)
	if err != nil {
		return nil, err
	}
	return h.sys.Create(r.Context(), cmd)
}

func (h *Handler) buildCommand(caseID uuid.UUID, file multipart.File, header *multipart.FileHeader) (CreateCommand, error) {
	if h.limits.MaxSize > 0 && header.Size > h.limits.MaxSize {
		return CreateCommand{}, ErrFileTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return CreateCommand{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)
	if !allowed(h.limits.AllowedTypes, contentType) {
		return CreateCommand{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	return CreateCommand{
		CaseID:      caseID,
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		PageCount:   extractPDFPageCount(h.logger, data, contentType),
	}, nil
}

func allowed(types []string, contentType string) bool {
	if len(types) == 0 {
		return true
	}
	return slices.Contains(types, contentType)
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header == "" || header == "application/octet-stream" {
		header = http.DetectContentType(data)
	}
	mediaType, _, _ := strings.Cut(header, ";")
	return strings.TrimSpace(mediaType)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
