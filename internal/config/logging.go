package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LoggingConfig controls the root logger. File enables a rotating log file
// written alongside stdout.
type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// SlogLevel returns Level as a slog.Level.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.File != "" {
		c.File = overlay.File
	}
	if overlay.MaxSizeMB != 0 {
		c.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxBackups != 0 {
		c.MaxBackups = overlay.MaxBackups
	}
	if overlay.MaxAgeDays != 0 {
		c.MaxAgeDays = overlay.MaxAgeDays
	}
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 100
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 28
	}
}

func (c *LoggingConfig) loadEnv() {
	envString("ARBITER_LOG_LEVEL", &c.Level)
	envString("ARBITER_LOG_FORMAT", &c.Format)
	envString("ARBITER_LOG_FILE", &c.File)
}

func (c *LoggingConfig) validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: want text or json", c.Format)
	}
	return nil
}
