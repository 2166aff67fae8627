package invoke

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// ProcessConfig describes an external command. Args may reference
// placeholders such as {image} that are expanded per invocation.
type ProcessConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Dir     string   `toml:"dir"`
	Timeout string   `toml:"timeout"`
}

// ProcessEnv maps process config fields to environment variable names for override injection.
type ProcessEnv struct {
	Command string
	Args    string
	Dir     string
	Timeout string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ProcessConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ProcessConfig) Finalize(env *ProcessEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ProcessConfig) Merge(overlay *ProcessConfig) {
	if overlay.Command != "" {
		c.Command = overlay.Command
	}
	if overlay.Args != nil {
		c.Args = overlay.Args
	}
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *ProcessConfig) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *ProcessConfig) loadEnv(env *ProcessEnv) {
	if env.Command != "" {
		if v := os.Getenv(env.Command); v != "" {
			c.Command = v
		}
	}
	if env.Args != "" {
		if v := os.Getenv(env.Args); v != "" {
			c.Args = strings.Fields(v)
		}
	}
	if env.Dir != "" {
		if v := os.Getenv(env.Dir); v != "" {
			c.Dir = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *ProcessConfig) validate() error {
	if c.Command == "" {
		return fmt.Errorf("command required")
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	return nil
}

// HTTPConfig describes a model server endpoint that accepts multipart image uploads.
type HTTPConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// HTTPEnv maps HTTP config fields to environment variable names for override injection.
type HTTPEnv struct {
	URL     string
	Timeout string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *HTTPConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *HTTPConfig) Finalize(env *HTTPEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *HTTPConfig) Merge(overlay *HTTPConfig) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *HTTPConfig) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "1m"
	}
}

func (c *HTTPConfig) loadEnv(env *HTTPEnv) {
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *HTTPConfig) validate() error {
	if c.URL == "" {
		return fmt.Errorf("url required")
	}
	if _, err := url.ParseRequestURI(c.URL); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	return nil
}
