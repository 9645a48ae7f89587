package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/arbiter/pkg/database"
	"github.com/JaimeStill/arbiter/pkg/events"
	"github.com/JaimeStill/arbiter/pkg/mail"
	"github.com/JaimeStill/arbiter/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvArbiterEnv             = "ARBITER_ENV"
	EnvArbiterShutdownTimeout = "ARBITER_SHUTDOWN_TIMEOUT"
	EnvArbiterVersion         = "ARBITER_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "ARBITER_DB_HOST",
	Port:            "ARBITER_DB_PORT",
	Name:            "ARBITER_DB_NAME",
	User:            "ARBITER_DB_USER",
	Password:        "ARBITER_DB_PASSWORD",
	SSLMode:         "ARBITER_DB_SSL_MODE",
	MaxOpenConns:    "ARBITER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ARBITER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ARBITER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ARBITER_DB_CONN_TIMEOUT",
	AutoMigrate:     "ARBITER_DB_AUTO_MIGRATE",
}

var storageEnv = &storage.Env{
	ContainerName:    "ARBITER_STORAGE_CONTAINER_NAME",
	ConnectionString: "ARBITER_STORAGE_CONNECTION_STRING",
	ServiceURL:       "ARBITER_STORAGE_SERVICE_URL",
}

var eventsEnv = &events.Env{
	NATSURL:       "ARBITER_EVENTS_NATS_URL",
	Stream:        "ARBITER_EVENTS_STREAM",
	SubjectPrefix: "ARBITER_EVENTS_SUBJECT_PREFIX",
}

var mailEnv = &mail.Env{
	Enabled:  "ARBITER_MAIL_ENABLED",
	Host:     "ARBITER_MAIL_HOST",
	Port:     "ARBITER_MAIL_PORT",
	Username: "ARBITER_MAIL_USERNAME",
	Password: "ARBITER_MAIL_PASSWORD",
	Sender:   "ARBITER_MAIL_SENDER",
}

// Config is the root configuration for the Arbiter service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	Logging         LoggingConfig        `toml:"logging"`
	Models          ModelsConfig         `toml:"models"`
	Classification  ClassificationConfig `toml:"classification"`
	Summaries       SummariesConfig      `toml:"summaries"`
	Events          events.Config        `toml:"events"`
	Mail            mail.Config          `toml:"mail"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the ARBITER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvArbiterEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Logging.Merge(&overlay.Logging)
	c.Models.Merge(&overlay.Models)
	c.Classification.Merge(&overlay.Classification)
	c.Summaries.Merge(&overlay.Summaries)
	c.Events.Merge(&overlay.Events)
	c.Mail.Merge(&overlay.Mail)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Models.Finalize(); err != nil {
		return fmt.Errorf("models: %w", err)
	}
	if err := c.Classification.Finalize(); err != nil {
		return fmt.Errorf("classification: %w", err)
	}
	if err := c.Summaries.Finalize(); err != nil {
		return fmt.Errorf("summaries: %w", err)
	}
	if err := c.Events.Finalize(eventsEnv); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.Mail.Finalize(mailEnv); err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	envString(EnvArbiterShutdownTimeout, &c.ShutdownTimeout)
	envString(EnvArbiterVersion, &c.Version)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvArbiterEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
