package classifications_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/classifications"
	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/internal/models"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func testHierarchy(t *testing.T) *classifications.Hierarchy {
	t.Helper()
	h, err := classifications.NewHierarchy([]classifications.Category{
		{
			ID:   "claims",
			Name: "claims",
			Children: []classifications.Category{
				{ID: "background", Name: "background"},
				{ID: "damages", Name: "damages"},
				{ID: "costs", Name: "costs"},
			},
		},
	})
	if err != nil {
		t.Fatalf("hierarchy: %v", err)
	}
	return h
}

func newEngine(t *testing.T, model models.Model, opts ...classifications.EngineOption) *classifications.Engine {
	t.Helper()
	opts = append([]classifications.EngineOption{
		classifications.WithClock(func() time.Time { return fixedTime }),
	}, opts...)
	return classifications.NewEngine(model, testHierarchy(t), opts...)
}

func source(content *string) documents.Source {
	return documents.Source{
		ID:      uuid.New(),
		Content: content,
		Title:   "Statement of Claim",
	}
}

// selectiveModel fails Classify for any text containing "fail".
type selectiveModel struct {
	*models.Mock
}

func (m selectiveModel) Classify(ctx context.Context, text string, labels []string) (*models.Prediction, error) {
	if strings.Contains(text, "fail") {
		return nil, models.ErrRequest
	}
	return m.Mock.Classify(ctx, text, labels)
}

func TestCategorizeThresholds(t *testing.T) {
	tests := []struct {
		name       string
		scores     map[string]float64
		wantCats   []string
		wantReview bool
		wantReason string
	}{
		{
			name:       "assigned and review band",
			scores:     map[string]float64{"background": 0.9, "damages": 0.6, "costs": 0.45},
			wantCats:   []string{"background", "damages"},
			wantReview: true,
			wantReason: "Low confidence score for category: costs",
		},
		{
			name:     "secondary boundary assigns",
			scores:   map[string]float64{"damages": 0.5},
			wantCats: []string{"damages"},
		},
		{
			name:       "review boundary flags",
			scores:     map[string]float64{"costs": 0.4},
			wantCats:   []string{},
			wantReview: true,
			wantReason: "Low confidence score for category: costs",
		},
		{
			name:     "below review is ignored",
			scores:   map[string]float64{"costs": 0.39},
			wantCats: []string{},
		},
		{
			name:       "lowest review label named",
			scores:     map[string]float64{"background": 0.48, "costs": 0.42},
			wantCats:   []string{},
			wantReview: true,
			wantReason: "Low confidence score for category: costs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, models.NewMock(models.WithScores(tt.scores)))
			r, err := e.Categorize(context.Background(), source(ptr("the claimant seeks damages")))
			if err != nil {
				t.Fatalf("categorize: %v", err)
			}

			if !slices.Equal(r.Categories, tt.wantCats) {
				t.Errorf("categories = %v, want %v", r.Categories, tt.wantCats)
			}
			if r.RequiresReview != tt.wantReview {
				t.Errorf("requires review = %v, want %v", r.RequiresReview, tt.wantReview)
			}
			if tt.wantReview {
				if r.ReviewReason == nil || *r.ReviewReason != tt.wantReason {
					t.Errorf("review reason = %v, want %q", r.ReviewReason, tt.wantReason)
				}
			} else if r.ReviewReason != nil {
				t.Errorf("unexpected review reason %q", *r.ReviewReason)
			}
		})
	}
}

func TestCategorizeScoresEveryLabel(t *testing.T) {
	e := newEngine(t, models.NewMock(models.WithScores(map[string]float64{"damages": 0.8})))
	r, err := e.Categorize(context.Background(), source(ptr("content")))
	if err != nil {
		t.Fatalf("categorize: %v", err)
	}

	if len(r.Scores) != 4 {
		t.Errorf("scores = %v, want 4 labels", r.Scores)
	}
	if r.Scores["claims"] != 0 {
		t.Errorf("claims score = %v, want 0", r.Scores["claims"])
	}
	if !r.ClassifiedAt.Equal(fixedTime) {
		t.Errorf("classified at = %v", r.ClassifiedAt)
	}
}

func TestCategorizeNoContent(t *testing.T) {
	for name, content := range map[string]*string{
		"nil":   nil,
		"blank": ptr("   \n"),
	} {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, models.NewMock(models.WithError(errors.New("should not be called"))))
			r, err := e.Categorize(context.Background(), source(content))
			if err != nil {
				t.Fatalf("categorize: %v", err)
			}
			if !r.RequiresReview {
				t.Error("expected review")
			}
			if r.ReviewReason == nil || *r.ReviewReason != classifications.ReasonNoContent {
				t.Errorf("review reason = %v", r.ReviewReason)
			}
			if len(r.Categories) != 0 {
				t.Errorf("categories = %v", r.Categories)
			}
		})
	}
}

func TestCategorizeModelError(t *testing.T) {
	e := newEngine(t, models.NewMock(models.WithError(models.ErrRequest)))
	_, err := e.Categorize(context.Background(), source(ptr("content")))
	if !errors.Is(err, classifications.ErrProcessing) {
		t.Errorf("error = %v, want ErrProcessing", err)
	}
	if !errors.Is(err, models.ErrRequest) {
		t.Errorf("error = %v, want wrapped model error", err)
	}
}

func TestCategorizeMetadata(t *testing.T) {
	e := newEngine(t, models.NewMock(), classifications.WithMaxContentLength(10))

	src := source(ptr(strings.Repeat("é", 25)))
	src.Title = "Claimant v. Respondent: Statement of the Claim"

	r, err := e.Categorize(context.Background(), src)
	if err != nil {
		t.Fatalf("categorize: %v", err)
	}

	if r.Metadata.TextLength != 25 {
		t.Errorf("text length = %d, want 25", r.Metadata.TextLength)
	}
	if r.Metadata.ProcessedLength != 10 {
		t.Errorf("processed length = %d, want 10", r.Metadata.ProcessedLength)
	}

	want := []string{"Claimant", "Respondent", "Statement", "Claim"}
	if !slices.Equal(r.Metadata.TitleKeywords, want) {
		t.Errorf("title keywords = %v, want %v", r.Metadata.TitleKeywords, want)
	}
}

func TestBatchCategorizeIsolatesFailures(t *testing.T) {
	model := selectiveModel{models.NewMock(models.WithScores(map[string]float64{"background": 0.9}))}
	e := newEngine(t, model)

	docs := []documents.Source{
		source(ptr("first document")),
		source(ptr("this one will fail")),
		source(nil),
		source(ptr("fourth document")),
	}

	results, err := e.BatchCategorize(context.Background(), docs)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(results) != len(docs) {
		t.Fatalf("got %d results, want %d", len(results), len(docs))
	}

	for i, r := range results {
		if r.DocumentID != docs[i].ID {
			t.Errorf("result %d is for %s, want %s", i, r.DocumentID, docs[i].ID)
		}
	}

	if results[0].Err != nil || !slices.Equal(results[0].Categories, []string{"background"}) {
		t.Errorf("result 0 = %+v", results[0])
	}

	failed := results[1]
	if failed.Err == nil || !errors.Is(failed.Err, classifications.ErrProcessing) {
		t.Errorf("failed err = %v", failed.Err)
	}
	if !failed.RequiresReview || failed.ReviewReason == nil ||
		!strings.HasPrefix(*failed.ReviewReason, "Error during classification: ") {
		t.Errorf("failed result = %+v", failed)
	}

	if results[2].Err != nil || !results[2].RequiresReview {
		t.Errorf("no content result = %+v", results[2])
	}
}

func TestBatchCategorizeExhausted(t *testing.T) {
	e := newEngine(t, models.NewMock(models.WithError(models.ErrRequest)))

	docs := []documents.Source{source(ptr("a")), source(ptr("b"))}
	results, err := e.BatchCategorize(context.Background(), docs)
	if !errors.Is(err, classifications.ErrBatchExhausted) {
		t.Fatalf("error = %v, want ErrBatchExhausted", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestBatchCategorizeEmpty(t *testing.T) {
	e := newEngine(t, models.NewMock())
	results, err := e.BatchCategorize(context.Background(), nil)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v", results)
	}
}
