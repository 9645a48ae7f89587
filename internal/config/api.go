package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/arbiter/pkg/formatting"
	"github.com/JaimeStill/arbiter/pkg/middleware"
	"github.com/JaimeStill/arbiter/pkg/openapi"
	"github.com/JaimeStill/arbiter/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "ARBITER_CORS_ENABLED",
	Origins:          "ARBITER_CORS_ORIGINS",
	AllowedMethods:   "ARBITER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "ARBITER_CORS_ALLOWED_HEADERS",
	AllowCredentials: "ARBITER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "ARBITER_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "ARBITER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "ARBITER_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "ARBITER_OPENAPI_TITLE",
	Description: "ARBITER_OPENAPI_DESCRIPTION",
}

var defaultContentTypes = []string{
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// APIConfig holds API routing, upload, CORS, and pagination settings.
type APIConfig struct {
	BasePath            string                `toml:"base_path"`
	MaxUploadSize       string                `toml:"max_upload_size"`
	AllowedContentTypes []string              `toml:"allowed_content_types"`
	MaxBatchSize        int                   `toml:"max_batch_size"`
	CORS                middleware.CORSConfig `toml:"cors"`
	Pagination          pagination.Config     `toml:"pagination"`
	OpenAPI             openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.AllowedContentTypes != nil {
		c.AllowedContentTypes = overlay.AllowedContentTypes
	}
	if overlay.MaxBatchSize != 0 {
		c.MaxBatchSize = overlay.MaxBatchSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	if len(c.AllowedContentTypes) == 0 {
		c.AllowedContentTypes = defaultContentTypes
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = 10
	}
}

func (c *APIConfig) loadEnv() {
	envString("ARBITER_API_BASE_PATH", &c.BasePath)
	envString("ARBITER_API_MAX_UPLOAD_SIZE", &c.MaxUploadSize)
	envInt("ARBITER_API_MAX_BATCH_SIZE", &c.MaxBatchSize)
	if v := os.Getenv("ARBITER_API_ALLOWED_CONTENT_TYPES"); v != "" {
		c.AllowedContentTypes = strings.Split(v, ",")
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max_batch_size must be positive")
	}
	return nil
}
