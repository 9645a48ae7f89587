package cases_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/cases"
	"github.com/JaimeStill/arbiter/pkg/pagination"
)

type mockSystem struct {
	listFn   func(ctx context.Context, page pagination.PageRequest, filters cases.Filters) (*pagination.PageResult[cases.Case], error)
	findFn   func(ctx context.Context, id uuid.UUID) (*cases.Case, error)
	createFn func(ctx context.Context, cmd cases.CreateCommand) (*cases.Case, error)
	updateFn func(ctx context.Context, id uuid.UUID, cmd cases.UpdateCommand) (*cases.Case, error)
}

func (m *mockSystem) Handler() *cases.Handler { return newTestHandler(m) }

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters cases.Filters) (*pagination.PageResult[cases.Case], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*cases.Case, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd cases.CreateCommand) (*cases.Case, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd cases.UpdateCommand) (*cases.Case, error) {
	return m.updateFn(ctx, id, cmd)
}

func newTestHandler(sys cases.System) *cases.Handler {
	return cases.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *cases.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleCase() cases.Case {
	return cases.Case{
		ID:           uuid.MustParse("7b0f6c1e-2d3a-4c55-9a1b-0e8f3c2d1a00"),
		CaseNumber:   "ARB-2024-001",
		Title:        "Acme Corp v. Globex Ltd",
		Status:       cases.StatusFiled,
		FiledDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ContactEmail: "registry@example.com",
		Parties: []cases.Party{
			{Name: "Acme Corp", Role: "claimant"},
			{Name: "Globex Ltd", Role: "respondent"},
		},
		Tribunal: []string{"A. Arbitrator"},
	}
}

func TestHandlerList(t *testing.T) {
	c := sampleCase()
	var got cases.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f cases.Filters) (*pagination.PageResult[cases.Case], error) {
			got = f
			result := pagination.NewPageResult([]cases.Case{c}, 1, 1, 20)
			return &result, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/cases?status=filed", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[cases.Case]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || result.Data[0].CaseNumber != c.CaseNumber {
		t.Errorf("result = %+v", result)
	}
	if got.Status == nil || *got.Status != cases.StatusFiled {
		t.Errorf("status filter = %v, want filed", got.Status)
	}
}

func TestHandlerFind(t *testing.T) {
	c := sampleCase()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*cases.Case, error) {
			if id == c.ID {
				return &c, nil
			}
			return nil, cases.ErrNotFound
		},
	}

	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/cases/" + c.ID.String(), http.StatusOK},
		{"not found", "/cases/" + uuid.New().String(), http.StatusNotFound},
		{"invalid id", "/cases/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	c := sampleCase()
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd cases.CreateCommand) (*cases.Case, error) {
			if cmd.CaseNumber == "ARB-DUP" {
				return nil, cases.ErrDuplicate
			}
			out := c
			out.CaseNumber = cmd.CaseNumber
			return &out, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"created", `{"case_number":"ARB-2024-002","title":"New matter"}`, http.StatusCreated},
		{"duplicate", `{"case_number":"ARB-DUP","title":"Dup"}`, http.StatusConflict},
		{"missing title", `{"case_number":"ARB-2024-003"}`, http.StatusBadRequest},
		{"bad email", `{"case_number":"A","title":"T","contact_email":"nope"}`, http.StatusBadRequest},
		{"party without role", `{"case_number":"A","title":"T","parties":[{"name":"X"}]}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/cases", bytes.NewBufferString(tt.body))
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerUpdate(t *testing.T) {
	c := sampleCase()
	sys := &mockSystem{
		updateFn: func(_ context.Context, id uuid.UUID, cmd cases.UpdateCommand) (*cases.Case, error) {
			if id != c.ID {
				return nil, cases.ErrNotFound
			}
			out := c
			out.Status = cmd.Status
			return &out, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	t.Run("updates status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"title":"Acme Corp v. Globex Ltd","status":"in_progress"}`
		mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/cases/"+c.ID.String(), bytes.NewBufferString(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var out cases.Case
		json.NewDecoder(rec.Body).Decode(&out)
		if out.Status != cases.StatusInProgress {
			t.Errorf("case status = %q, want in_progress", out.Status)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"title":"T","status":"archived"}`
		mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/cases/"+c.ID.String(), bytes.NewBufferString(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing case", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"title":"T","status":"closed"}`
		mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/cases/"+uuid.New().String(), bytes.NewBufferString(body)))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerSearch(t *testing.T) {
	var gotPage pagination.PageRequest
	var gotFilters cases.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, f cases.Filters) (*pagination.PageResult[cases.Case], error) {
			gotPage, gotFilters = page, f
			result := pagination.NewPageResult([]cases.Case{}, 0, page.Page, page.PageSize)
			return &result, nil
		},
	}

	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	body := `{"page":2,"page_size":500,"title":"Acme"}`
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/cases/search", bytes.NewBufferString(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotPage.Page != 2 || gotPage.PageSize != 100 {
		t.Errorf("page = %+v, want page 2 size 100", gotPage)
	}
	if gotFilters.Title == nil || *gotFilters.Title != "Acme" {
		t.Errorf("title filter = %v, want Acme", gotFilters.Title)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{cases.ErrNotFound, http.StatusNotFound},
		{cases.ErrDuplicate, http.StatusConflict},
		{io.EOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := cases.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
