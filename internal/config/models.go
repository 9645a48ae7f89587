package config

import (
	"fmt"
	"time"
)

// Model providers.
const (
	ProviderMock   = "mock"
	ProviderOllama = "ollama"
)

// ModelsConfig selects and configures the language model backend used for
// classification, summarization and embeddings.
type ModelsConfig struct {
	Provider      string `toml:"provider"`
	BaseURL       string `toml:"base_url"`
	ChatModel     string `toml:"chat_model"`
	EmbedModel    string `toml:"embed_model"`
	Dimensions    int    `toml:"dimensions"`
	Timeout       string `toml:"timeout"`
	EmbedCacheTTL string `toml:"embed_cache_ttl"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ModelsConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// EmbedCacheTTLDuration returns EmbedCacheTTL as a time.Duration.
func (c *ModelsConfig) EmbedCacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.EmbedCacheTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ModelsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ModelsConfig) Merge(overlay *ModelsConfig) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.ChatModel != "" {
		c.ChatModel = overlay.ChatModel
	}
	if overlay.EmbedModel != "" {
		c.EmbedModel = overlay.EmbedModel
	}
	if overlay.Dimensions != 0 {
		c.Dimensions = overlay.Dimensions
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.EmbedCacheTTL != "" {
		c.EmbedCacheTTL = overlay.EmbedCacheTTL
	}
}

func (c *ModelsConfig) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderMock
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.ChatModel == "" {
		c.ChatModel = "llama3.1:8b"
	}
	if c.EmbedModel == "" {
		c.EmbedModel = "nomic-embed-text"
	}
	if c.Dimensions == 0 {
		c.Dimensions = 768
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.EmbedCacheTTL == "" {
		c.EmbedCacheTTL = "1h"
	}
}

func (c *ModelsConfig) loadEnv() {
	envString("ARBITER_MODELS_PROVIDER", &c.Provider)
	envString("ARBITER_MODELS_BASE_URL", &c.BaseURL)
	envString("ARBITER_MODELS_CHAT_MODEL", &c.ChatModel)
	envString("ARBITER_MODELS_EMBED_MODEL", &c.EmbedModel)
	envString("ARBITER_MODELS_TIMEOUT", &c.Timeout)
}

func (c *ModelsConfig) validate() error {
	switch c.Provider {
	case ProviderMock, ProviderOllama:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Dimensions != 768 {
		return fmt.Errorf("dimensions must be 768 to match the embedding column, got %d", c.Dimensions)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.EmbedCacheTTL); err != nil {
		return fmt.Errorf("invalid embed_cache_ttl: %w", err)
	}
	return nil
}
