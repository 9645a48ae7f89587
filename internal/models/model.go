// Package models defines the language model capability used by the analysis
// engines and provides a deterministic mock and an Ollama-backed
// implementation.
package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/arbiter/internal/config"
)

// Model errors.
var (
	ErrRequest         = errors.New("model request failed")
	ErrInvalidResponse = errors.New("invalid model response")
)

// Prediction pairs candidate labels with their scores, index for index.
type Prediction struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// ScoreMap returns the prediction as label → score.
func (p Prediction) ScoreMap() map[string]float64 {
	m := make(map[string]float64, len(p.Labels))
	for i, l := range p.Labels {
		if i < len(p.Scores) {
			m[l] = p.Scores[i]
		}
	}
	return m
}

// Model is the text analysis capability consumed by the classification and
// summarization engines.
type Model interface {
	// Classify scores text against every candidate label independently.
	Classify(ctx context.Context, text string, labels []string) (*Prediction, error)
	// Summarize condenses text to at most maxLength words.
	Summarize(ctx context.Context, text string, maxLength int) (string, error)
	// Embed returns the embedding vector of text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Cleanup releases cached state held by the model.
	Cleanup() error
}

// New returns the model selected by cfg.Provider.
func New(cfg *config.ModelsConfig, logger *slog.Logger) (Model, error) {
	switch cfg.Provider {
	case config.ProviderMock:
		return NewMock(WithDimensions(cfg.Dimensions)), nil
	case config.ProviderOllama:
		return NewOllama(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
