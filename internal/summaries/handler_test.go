package summaries_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/internal/summaries"
	"github.com/JaimeStill/arbiter/pkg/pagination"
)

type mockSystem struct {
	listFn       func(ctx context.Context, page pagination.PageRequest, filters summaries.Filters) (*pagination.PageResult[summaries.Summary], error)
	findFn       func(ctx context.Context, id uuid.UUID) (*summaries.Summary, error)
	findByDocFn  func(ctx context.Context, documentID uuid.UUID) (*summaries.Summary, error)
	createFn     func(ctx context.Context, documentID uuid.UUID, opts *summaries.Options) (*summaries.Summary, error)
	regenerateFn func(ctx context.Context, documentID uuid.UUID, opts *summaries.Options) (*summaries.Summary, error)
	deleteFn     func(ctx context.Context, documentID uuid.UUID) error
	caseFn       func(ctx context.Context, caseID uuid.UUID, opts *summaries.Options) ([]summaries.BatchItem, error)
}

func (m *mockSystem) Handler() *summaries.Handler {
	return summaries.NewHandler(
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters summaries.Filters) (*pagination.PageResult[summaries.Summary], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*summaries.Summary, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) FindByDocument(ctx context.Context, documentID uuid.UUID) (*summaries.Summary, error) {
	return m.findByDocFn(ctx, documentID)
}

func (m *mockSystem) Create(ctx context.Context, documentID uuid.UUID, opts *summaries.Options) (*summaries.Summary, error) {
	return m.createFn(ctx, documentID, opts)
}

func (m *mockSystem) Regenerate(ctx context.Context, documentID uuid.UUID, opts *summaries.Options) (*summaries.Summary, error) {
	return m.regenerateFn(ctx, documentID, opts)
}

func (m *mockSystem) Delete(ctx context.Context, documentID uuid.UUID) error {
	return m.deleteFn(ctx, documentID)
}

func (m *mockSystem) SummarizeCase(ctx context.Context, caseID uuid.UUID, opts *summaries.Options) ([]summaries.BatchItem, error) {
	return m.caseFn(ctx, caseID, opts)
}

func (m *mockSystem) ExecutiveSummaries(ctx context.Context, caseID uuid.UUID) (map[uuid.UUID]string, error) {
	return nil, nil
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	group := sys.Handler().Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreate(t *testing.T) {
	documentID := uuid.New()

	tests := []struct {
		name      string
		body      string
		err       error
		status    int
		wantOpts  bool
		wantExecN int
	}{
		{name: "no body", status: http.StatusCreated},
		{name: "with options", body: `{"executive_summary_length":20}`, status: http.StatusCreated, wantOpts: true, wantExecN: 20},
		{name: "negative length", body: `{"max_length":-1}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{"max_length":`, status: http.StatusBadRequest},
		{name: "empty content", err: summaries.ErrEmptyContent, status: http.StatusBadRequest},
		{name: "missing content", err: fmt.Errorf("%w: doc", summaries.ErrInvalidDocument), status: http.StatusBadRequest},
		{name: "unknown document", err: documents.ErrNotFound, status: http.StatusNotFound},
		{name: "existing summary", err: summaries.ErrDuplicate, status: http.StatusConflict},
		{name: "model failure", err: &summaries.StageError{Stage: summaries.StageDetailed, Err: io.ErrUnexpectedEOF}, status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOpts *summaries.Options
			mux := setupMux(&mockSystem{
				createFn: func(_ context.Context, id uuid.UUID, opts *summaries.Options) (*summaries.Summary, error) {
					gotOpts = opts
					if tt.err != nil {
						return nil, tt.err
					}
					return &summaries.Summary{ID: uuid.New(), DocumentID: id}, nil
				},
			})

			rec := do(mux, "POST", "/summaries/document/"+documentID.String(), tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.wantOpts && (gotOpts == nil || gotOpts.ExecutiveSummaryLength != tt.wantExecN) {
				t.Errorf("options = %+v", gotOpts)
			}
			if !tt.wantOpts && tt.body == "" && gotOpts != nil {
				t.Errorf("options = %+v, want nil", gotOpts)
			}
		})
	}
}

func TestHandlerRegenerateAndDelete(t *testing.T) {
	documentID := uuid.New()

	mux := setupMux(&mockSystem{
		regenerateFn: func(_ context.Context, id uuid.UUID, _ *summaries.Options) (*summaries.Summary, error) {
			if id != documentID {
				return nil, summaries.ErrNotFound
			}
			return &summaries.Summary{DocumentID: id}, nil
		},
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != documentID {
				return summaries.ErrNotFound
			}
			return nil
		},
	})

	if rec := do(mux, "PUT", "/summaries/document/"+documentID.String(), ""); rec.Code != http.StatusOK {
		t.Errorf("regenerate status = %d", rec.Code)
	}
	if rec := do(mux, "PUT", "/summaries/document/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("regenerate missing status = %d", rec.Code)
	}
	if rec := do(mux, "DELETE", "/summaries/document/"+documentID.String(), ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(mux, "DELETE", "/summaries/document/bad", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("delete bad id status = %d", rec.Code)
	}
}

func TestHandlerFindByDocument(t *testing.T) {
	documentID := uuid.New()

	mux := setupMux(&mockSystem{
		findByDocFn: func(_ context.Context, id uuid.UUID) (*summaries.Summary, error) {
			if id != documentID {
				return nil, summaries.ErrNotFound
			}
			return &summaries.Summary{DocumentID: id, ExecutiveSummary: "short"}, nil
		},
	})

	if rec := do(mux, "GET", "/summaries/document/"+documentID.String(), ""); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec := do(mux, "GET", "/summaries/document/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d", rec.Code)
	}
}

func TestHandlerSearch(t *testing.T) {
	var captured summaries.Filters

	mux := setupMux(&mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters summaries.Filters) (*pagination.PageResult[summaries.Summary], error) {
			captured = filters
			result := pagination.NewPageResult([]summaries.Summary{}, 0, page.Page, page.PageSize)
			return &result, nil
		},
	})

	rec := do(mux, "POST", "/summaries/search", `{"language":"es","file_type":"pdf"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if captured.Language == nil || *captured.Language != "es" || captured.FileType == nil || *captured.FileType != "pdf" {
		t.Errorf("filters = %+v", captured)
	}

	rec = do(mux, "GET", "/summaries?language=fr", "")
	if rec.Code != http.StatusOK || captured.Language == nil || *captured.Language != "fr" {
		t.Errorf("list status = %d, filters = %+v", rec.Code, captured)
	}
}

func TestHandlerSummarizeCase(t *testing.T) {
	caseID := uuid.New()

	mux := setupMux(&mockSystem{
		caseFn: func(_ context.Context, id uuid.UUID, opts *summaries.Options) ([]summaries.BatchItem, error) {
			if id != caseID {
				return nil, summaries.ErrBatchExhausted
			}
			return []summaries.BatchItem{{DocumentID: uuid.New(), Error: "Document content cannot be empty"}}, nil
		},
	})

	if rec := do(mux, "POST", "/summaries/batch", fmt.Sprintf(`{"case_id":%q}`, caseID)); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec := do(mux, "POST", "/summaries/batch", fmt.Sprintf(`{"case_id":%q}`, uuid.New())); rec.Code != http.StatusBadGateway {
		t.Errorf("exhausted status = %d", rec.Code)
	}
}
