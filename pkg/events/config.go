package events

import (
	"fmt"
	"os"
	"time"
)

// Config holds event bus settings. NATSURL is optional: when empty, events
// stay in-process.
type Config struct {
	NATSURL        string `toml:"nats_url"`
	Stream         string `toml:"stream"`
	SubjectPrefix  string `toml:"subject_prefix"`
	PublishTimeout string `toml:"publish_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	NATSURL       string
	Stream        string
	SubjectPrefix string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.NATSURL != "" {
		c.NATSURL = overlay.NATSURL
	}
	if overlay.Stream != "" {
		c.Stream = overlay.Stream
	}
	if overlay.SubjectPrefix != "" {
		c.SubjectPrefix = overlay.SubjectPrefix
	}
	if overlay.PublishTimeout != "" {
		c.PublishTimeout = overlay.PublishTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Stream == "" {
		c.Stream = "ARBITER"
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = "arbiter"
	}
	if c.PublishTimeout == "" {
		c.PublishTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.NATSURL != "" {
		if v := os.Getenv(env.NATSURL); v != "" {
			c.NATSURL = v
		}
	}
	if env.Stream != "" {
		if v := os.Getenv(env.Stream); v != "" {
			c.Stream = v
		}
	}
	if env.SubjectPrefix != "" {
		if v := os.Getenv(env.SubjectPrefix); v != "" {
			c.SubjectPrefix = v
		}
	}
}

func (c *Config) validate() error {
	if c.NATSURL != "" && c.Stream == "" {
		return fmt.Errorf("stream required when nats_url is set")
	}
	if _, err := time.ParseDuration(c.PublishTimeout); err != nil {
		return fmt.Errorf("invalid publish_timeout: %w", err)
	}
	return nil
}

// PublishTimeoutDuration returns PublishTimeout as a time.Duration.
func (c *Config) PublishTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.PublishTimeout)
	return d
}
