package nutrition

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Local table sources.
const (
	SourceEmbedded = "embedded"
	SourceDatabase = "database"
)

// Config holds local table and remote fallback settings.
type Config struct {
	Source        string       `toml:"source"`
	FuzzyDistance int          `toml:"fuzzy_distance"`
	Remote        RemoteConfig `toml:"remote"`
}

// Env maps nutrition config fields to environment variable names.
type Env struct {
	Source        string
	FuzzyDistance string
	Remote        *RemoteEnv
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	if err := c.validate(); err != nil {
		return err
	}

	var remoteEnv *RemoteEnv
	if env != nil {
		remoteEnv = env.Remote
	}
	if err := c.Remote.Finalize(remoteEnv); err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Source != "" {
		c.Source = overlay.Source
	}
	if overlay.FuzzyDistance != 0 {
		c.FuzzyDistance = overlay.FuzzyDistance
	}
	c.Remote.Merge(&overlay.Remote)
}

// UsesDatabase reports whether the local table is loaded from Postgres.
func (c *Config) UsesDatabase() bool {
	return c.Source == SourceDatabase
}

func (c *Config) loadDefaults() {
	if c.Source == "" {
		c.Source = SourceEmbedded
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Source != "" {
		if v := os.Getenv(env.Source); v != "" {
			c.Source = v
		}
	}
	if env.FuzzyDistance != "" {
		if v := os.Getenv(env.FuzzyDistance); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.FuzzyDistance = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Source != SourceEmbedded && c.Source != SourceDatabase {
		return fmt.Errorf("invalid source: %q", c.Source)
	}
	if c.FuzzyDistance < 0 {
		return fmt.Errorf("invalid fuzzy_distance: %d", c.FuzzyDistance)
	}
	return nil
}

// RemoteConfig holds FoodData Central client settings.
type RemoteConfig struct {
	Disabled bool   `toml:"disabled"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
	Timeout  string `toml:"timeout"`
	Retries  int    `toml:"retries"`
	Backoff  string `toml:"backoff"`
}

// RemoteEnv maps remote config fields to environment variable names.
type RemoteEnv struct {
	Disabled string
	BaseURL  string
	APIKey   string
	Timeout  string
	Retries  string
	Backoff  string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *RemoteConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// BackoffDuration returns Backoff as a time.Duration.
func (c *RemoteConfig) BackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.Backoff)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RemoteConfig) Finalize(env *RemoteEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. An overlay can disable the
// remote source but not re-enable it; use the environment for that.
func (c *RemoteConfig) Merge(overlay *RemoteConfig) {
	if overlay.Disabled {
		c.Disabled = true
	}

	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Retries != 0 {
		c.Retries = overlay.Retries
	}
	if overlay.Backoff != "" {
		c.Backoff = overlay.Backoff
	}
}

func (c *RemoteConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.nal.usda.gov/fdc/v1"
	}
	if c.APIKey == "" {
		c.APIKey = "DEMO_KEY"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.Retries == 0 {
		c.Retries = 2
	}
	if c.Backoff == "" {
		c.Backoff = "250ms"
	}
}

func (c *RemoteConfig) loadEnv(env *RemoteEnv) {
	if env.Disabled != "" {
		if v := os.Getenv(env.Disabled); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Disabled = b
			}
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.Retries != "" {
		if v := os.Getenv(env.Retries); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Retries = n
			}
		}
	}
	if env.Backoff != "" {
		if v := os.Getenv(env.Backoff); v != "" {
			c.Backoff = v
		}
	}
}

func (c *RemoteConfig) validate() error {
	if c.Retries < 0 {
		return fmt.Errorf("invalid retries: %d", c.Retries)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Backoff); err != nil {
		return fmt.Errorf("invalid backoff: %w", err)
	}
	return nil
}
