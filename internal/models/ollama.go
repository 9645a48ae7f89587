package models

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/JaimeStill/arbiter/internal/config"
	"github.com/JaimeStill/arbiter/pkg/formatting"
)

const classifyPrompt = `You are a legal document classifier for arbitration proceedings.
Score how well the document below matches EACH candidate category, independently,
with a confidence between 0 and 1.

Candidate categories:
%s

Respond with JSON only, in the form {"scores": {"<category>": <score>, ...}}.

Document:
%s`

const summarizePrompt = `Summarize the following arbitration document in no more than %d words.
Respond with the summary text only.

Document:
%s`

// Ollama is a Model backed by an Ollama server: chat completions for
// classification and summaries, the embeddings endpoint for vectors.
type Ollama struct {
	baseURL    string
	chatModel  string
	embedModel string
	client     *http.Client
	embeddings *cache.Cache
	logger     *slog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewOllama creates an Ollama model client from cfg.
func NewOllama(cfg *config.ModelsConfig, logger *slog.Logger) *Ollama {
	ttl := cfg.EmbedCacheTTLDuration()
	return &Ollama{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		chatModel:  cfg.ChatModel,
		embedModel: cfg.EmbedModel,
		client:     &http.Client{Timeout: cfg.TimeoutDuration()},
		embeddings: cache.New(ttl, 2*ttl),
		logger:     logger.With("system", "models", "provider", "ollama"),
	}
}

func (o *Ollama) Classify(ctx context.Context, text string, labels []string) (*Prediction, error) {
	prompt := fmt.Sprintf(classifyPrompt, "- "+strings.Join(labels, "\n- "), text)

	content, err := o.chat(ctx, prompt, "json")
	if err != nil {
		return nil, err
	}

	parsed, err := formatting.Parse[struct {
		Scores map[string]float64 `json:"scores"`
	}](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	p := &Prediction{
		Labels: append([]string(nil), labels...),
		Scores: make([]float64, len(labels)),
	}
	for i, l := range labels {
		p.Scores[i] = clamp(parsed.Scores[l])
	}
	return p, nil
}

func (o *Ollama) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = defaultSummaryLength
	}
	content, err := o.chat(ctx, fmt.Sprintf(summarizePrompt, maxLength, text), "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if v, ok := o.embeddings.Get(key); ok {
		return v.([]float32), nil
	}

	var resp embedResponse
	if err := o.post(ctx, "/api/embeddings", embedRequest{Model: o.embedModel, Prompt: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrInvalidResponse)
	}

	v := make([]float32, len(resp.Embedding))
	for i, f := range resp.Embedding {
		v[i] = float32(f)
	}
	o.embeddings.SetDefault(key, v)
	return v, nil
}

func (o *Ollama) Cleanup() error {
	n := o.embeddings.ItemCount()
	o.embeddings.Flush()
	o.logger.Info("model cache cleared", "embeddings", n)
	return nil
}

func (o *Ollama) chat(ctx context.Context, prompt, format string) (string, error) {
	req := chatRequest{
		Model:    o.chatModel,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Format:   format,
		Options:  map[string]any{"temperature": 0},
	}

	start := time.Now()
	var resp chatResponse
	if err := o.post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	o.logger.DebugContext(ctx, "chat completed", "model", o.chatModel, "duration", time.Since(start))
	return resp.Message.Content, nil
}

func (o *Ollama) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %w", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrRequest, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
