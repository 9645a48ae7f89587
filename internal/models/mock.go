package models

import (
	"context"
	"sync/atomic"

	"github.com/JaimeStill/arbiter/pkg/formatting"
)

const (
	defaultDimensions    = 768
	defaultSummaryLength = 50
)

// Mock is a deterministic Model. By default every label scores 1/n, a
// summary is the leading words of the input, and every embedding is a
// constant vector.
type Mock struct {
	scores     map[string]float64
	err        error
	dimensions int
	cleanups   atomic.Int32
}

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithScores fixes label scores. Labels absent from scores score 0.
func WithScores(scores map[string]float64) MockOption {
	return func(m *Mock) { m.scores = scores }
}

// WithError makes every model call fail with err.
func WithError(err error) MockOption {
	return func(m *Mock) { m.err = err }
}

// WithDimensions sets the embedding length.
func WithDimensions(n int) MockOption {
	return func(m *Mock) { m.dimensions = n }
}

// NewMock creates a Mock with the given options.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{dimensions: defaultDimensions}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mock) Classify(ctx context.Context, text string, labels []string) (*Prediction, error) {
	if m.err != nil {
		return nil, m.err
	}

	p := &Prediction{
		Labels: append([]string(nil), labels...),
		Scores: make([]float64, len(labels)),
	}
	for i, l := range labels {
		if m.scores != nil {
			p.Scores[i] = m.scores[l]
		} else {
			p.Scores[i] = 1 / float64(len(labels))
		}
	}
	return p, nil
}

func (m *Mock) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if maxLength <= 0 {
		maxLength = defaultSummaryLength
	}
	return formatting.TruncateWords(text, maxLength), nil
}

func (m *Mock) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	v := make([]float32, m.dimensions)
	for i := range v {
		v[i] = 0.1
	}
	return v, nil
}

func (m *Mock) Cleanup() error {
	m.cleanups.Add(1)
	return nil
}

// Cleanups reports how many times Cleanup has been called.
func (m *Mock) Cleanups() int {
	return int(m.cleanups.Load())
}
