package config

import (
	"fmt"
	"time"
)

// ClassificationConfig holds confidence thresholds and hierarchy settings
// for the classification engine.
type ClassificationConfig struct {
	PrimaryThreshold   float64 `toml:"primary_threshold"`
	SecondaryThreshold float64 `toml:"secondary_threshold"`
	ReviewThreshold    float64 `toml:"review_threshold"`
	HierarchyPath      string  `toml:"hierarchy_path"`
	MaxContentLength   int     `toml:"max_content_length"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClassificationConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ClassificationConfig) Merge(overlay *ClassificationConfig) {
	if overlay.PrimaryThreshold != 0 {
		c.PrimaryThreshold = overlay.PrimaryThreshold
	}
	if overlay.SecondaryThreshold != 0 {
		c.SecondaryThreshold = overlay.SecondaryThreshold
	}
	if overlay.ReviewThreshold != 0 {
		c.ReviewThreshold = overlay.ReviewThreshold
	}
	if overlay.HierarchyPath != "" {
		c.HierarchyPath = overlay.HierarchyPath
	}
	if overlay.MaxContentLength != 0 {
		c.MaxContentLength = overlay.MaxContentLength
	}
}

func (c *ClassificationConfig) loadDefaults() {
	if c.PrimaryThreshold == 0 {
		c.PrimaryThreshold = 0.7
	}
	if c.SecondaryThreshold == 0 {
		c.SecondaryThreshold = 0.5
	}
	if c.ReviewThreshold == 0 {
		c.ReviewThreshold = 0.4
	}
	if c.MaxContentLength == 0 {
		c.MaxContentLength = 5000
	}
}

func (c *ClassificationConfig) loadEnv() {
	envFloat("ARBITER_CLASSIFICATION_PRIMARY_THRESHOLD", &c.PrimaryThreshold)
	envFloat("ARBITER_CLASSIFICATION_SECONDARY_THRESHOLD", &c.SecondaryThreshold)
	envFloat("ARBITER_CLASSIFICATION_REVIEW_THRESHOLD", &c.ReviewThreshold)
	envString("ARBITER_CLASSIFICATION_HIERARCHY_PATH", &c.HierarchyPath)
	envInt("ARBITER_CLASSIFICATION_MAX_CONTENT_LENGTH", &c.MaxContentLength)
}

func (c *ClassificationConfig) validate() error {
	if !(0 < c.ReviewThreshold && c.ReviewThreshold <= c.SecondaryThreshold &&
		c.SecondaryThreshold <= c.PrimaryThreshold && c.PrimaryThreshold <= 1) {
		return fmt.Errorf("thresholds must satisfy 0 < review <= secondary <= primary <= 1")
	}
	if c.MaxContentLength < 1 {
		return fmt.Errorf("max_content_length must be positive")
	}
	return nil
}

// SummariesConfig holds default summarization options and the read cache TTL.
type SummariesConfig struct {
	MaxLength               int    `toml:"max_length"`
	MinLength               int    `toml:"min_length"`
	ExecutiveSummaryLength  int    `toml:"executive_summary_length"`
	ExtractLegalTerms       *bool  `toml:"extract_legal_terms"`
	ExtractEntities         *bool  `toml:"extract_entities"`
	SectionDetection        *bool  `toml:"section_detection"`
	IncludeConfidenceScores bool   `toml:"include_confidence_scores"`
	CacheTTL                string `toml:"cache_ttl"`
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *SummariesConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SummariesConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *SummariesConfig) Merge(overlay *SummariesConfig) {
	if overlay.MaxLength != 0 {
		c.MaxLength = overlay.MaxLength
	}
	if overlay.MinLength != 0 {
		c.MinLength = overlay.MinLength
	}
	if overlay.ExecutiveSummaryLength != 0 {
		c.ExecutiveSummaryLength = overlay.ExecutiveSummaryLength
	}
	if overlay.ExtractLegalTerms != nil {
		c.ExtractLegalTerms = overlay.ExtractLegalTerms
	}
	if overlay.ExtractEntities != nil {
		c.ExtractEntities = overlay.ExtractEntities
	}
	if overlay.SectionDetection != nil {
		c.SectionDetection = overlay.SectionDetection
	}
	if overlay.IncludeConfidenceScores {
		c.IncludeConfidenceScores = true
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
}

func (c *SummariesConfig) loadDefaults() {
	if c.MaxLength == 0 {
		c.MaxLength = 500
	}
	if c.MinLength == 0 {
		c.MinLength = 50
	}
	if c.ExecutiveSummaryLength == 0 {
		c.ExecutiveSummaryLength = 100
	}
	enabled := true
	if c.ExtractLegalTerms == nil {
		c.ExtractLegalTerms = &enabled
	}
	if c.ExtractEntities == nil {
		c.ExtractEntities = &enabled
	}
	if c.SectionDetection == nil {
		c.SectionDetection = &enabled
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "10m"
	}
}

func (c *SummariesConfig) loadEnv() {
	envInt("ARBITER_SUMMARIES_MAX_LENGTH", &c.MaxLength)
	envInt("ARBITER_SUMMARIES_EXECUTIVE_SUMMARY_LENGTH", &c.ExecutiveSummaryLength)
	envBool("ARBITER_SUMMARIES_INCLUDE_CONFIDENCE_SCORES", &c.IncludeConfidenceScores)
	envString("ARBITER_SUMMARIES_CACHE_TTL", &c.CacheTTL)
}

func (c *SummariesConfig) validate() error {
	if c.MinLength > c.MaxLength {
		return fmt.Errorf("min_length cannot exceed max_length")
	}
	if c.ExecutiveSummaryLength < 1 {
		return fmt.Errorf("executive_summary_length must be positive")
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	return nil
}
