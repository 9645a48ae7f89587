package models_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/JaimeStill/arbiter/internal/config"
	"github.com/JaimeStill/arbiter/internal/models"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMockClassifyUniform(t *testing.T) {
	m := models.NewMock()
	p, err := m.Classify(context.Background(), "text", []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	for i, s := range p.Scores {
		if s != 0.25 {
			t.Errorf("score[%d] = %v, want 0.25", i, s)
		}
	}
}

func TestMockClassifyFixedScores(t *testing.T) {
	m := models.NewMock(models.WithScores(map[string]float64{"a": 0.9}))
	p, err := m.Classify(context.Background(), "text", []string{"a", "b"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	got := p.ScoreMap()
	if got["a"] != 0.9 || got["b"] != 0 {
		t.Errorf("scores = %v", got)
	}
}

func TestMockSummarize(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLength int
		want      string
	}{
		{"truncates", "one two three four", 2, "one two"},
		{"shorter than limit", "one two", 10, "one two"},
		{"default limit", strings.Repeat("w ", 60), 0, strings.TrimSpace(strings.Repeat("w ", 50))},
	}

	m := models.NewMock()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Summarize(context.Background(), tt.text, tt.maxLength)
			if err != nil {
				t.Fatalf("summarize: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMockEmbedAndCleanup(t *testing.T) {
	m := models.NewMock()
	v, err := m.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(v) != 768 || v[0] != 0.1 {
		t.Errorf("embedding len %d first %v", len(v), v[0])
	}

	m.Cleanup()
	m.Cleanup()
	if m.Cleanups() != 2 {
		t.Errorf("cleanups = %d, want 2", m.Cleanups())
	}
}

func TestMockError(t *testing.T) {
	boom := errors.New("boom")
	m := models.NewMock(models.WithError(boom))

	if _, err := m.Classify(context.Background(), "x", []string{"a"}); !errors.Is(err, boom) {
		t.Errorf("classify err = %v", err)
	}
	if _, err := m.Summarize(context.Background(), "x", 1); !errors.Is(err, boom) {
		t.Errorf("summarize err = %v", err)
	}
	if _, err := m.Embed(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("embed err = %v", err)
	}
}

func newOllama(t *testing.T, handler http.HandlerFunc) *models.Ollama {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.ModelsConfig{
		Provider:      config.ProviderOllama,
		BaseURL:       srv.URL,
		ChatModel:     "chat",
		EmbedModel:    "embed",
		Timeout:       "5s",
		EmbedCacheTTL: "1m",
	}
	return models.NewOllama(cfg, discard())
}

func chatReply(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(map[string]any{
		"message": map[string]string{"role": "assistant", "content": content},
		"done":    true,
	})
}

func TestOllamaClassify(t *testing.T) {
	o := newOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		chatReply(w, "```json\n{\"scores\": {\"Evidence\": 0.8, \"Awards\": 1.4}}\n```")
	})

	p, err := o.Classify(context.Background(), "doc", []string{"Evidence", "Awards", "Costs"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	got := p.ScoreMap()
	want := map[string]float64{"Evidence": 0.8, "Awards": 1, "Costs": 0}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("score %s = %v, want %v", k, got[k], v)
		}
	}
}

func TestOllamaClassifyInvalidResponse(t *testing.T) {
	o := newOllama(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(w, "not json")
	})

	_, err := o.Classify(context.Background(), "doc", []string{"a"})
	if !errors.Is(err, models.ErrInvalidResponse) {
		t.Errorf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestOllamaServerError(t *testing.T) {
	o := newOllama(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := o.Summarize(context.Background(), "doc", 10)
	if !errors.Is(err, models.ErrRequest) {
		t.Errorf("err = %v, want ErrRequest", err)
	}
}

func TestOllamaEmbedCaches(t *testing.T) {
	var calls atomic.Int32
	o := newOllama(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.5, 0.25}})
	})

	ctx := context.Background()
	for range 3 {
		v, err := o.Embed(ctx, "same text")
		if err != nil {
			t.Fatalf("embed: %v", err)
		}
		if len(v) != 2 || v[0] != 0.5 {
			t.Errorf("embedding = %v", v)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}

	o.Cleanup()
	if _, err := o.Embed(ctx, "same text"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server calls after cleanup = %d, want 2", calls.Load())
	}
}

func TestNew(t *testing.T) {
	m, err := models.New(&config.ModelsConfig{Provider: config.ProviderMock, Dimensions: 4}, discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	v, _ := m.Embed(context.Background(), "x")
	if len(v) != 4 {
		t.Errorf("dimensions = %d, want 4", len(v))
	}

	if _, err := models.New(&config.ModelsConfig{Provider: "other"}, discard()); err == nil {
		t.Error("expected error for unknown provider")
	}
}
