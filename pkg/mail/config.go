package mail

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds SMTP settings. When Enabled is false, messages are logged
// instead of sent.
type Config struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Sender   string `toml:"sender"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled  string
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
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
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.Sender != "" {
		c.Sender = overlay.Sender
	}
}

func (c *Config) loadDefaults() {
	if c.Port == 0 {
		c.Port = 587
	}
	if c.Sender == "" {
		c.Sender = "arbiter@localhost"
	}
}

func (c *Config) loadEnv(env *Env) {
	str := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	str(env.Host, &c.Host)
	str(env.Username, &c.Username)
	str(env.Password, &c.Password)
	str(env.Sender, &c.Sender)

	if env.Port != "" {
		if v := os.Getenv(env.Port); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Port = n
			}
		}
	}
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Enabled = b
			}
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("host required when mail is enabled")
	}
	if c.Port <= 0 {
		return fmt.Errorf("port must be positive")
	}
	return nil
}
