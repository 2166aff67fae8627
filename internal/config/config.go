package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/caloric/internal/classify"
	"github.com/JaimeStill/caloric/internal/nutrition"
	"github.com/JaimeStill/caloric/internal/portion"
	"github.com/JaimeStill/caloric/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCaloricEnv             = "CALORIC_ENV"
	EnvCaloricShutdownTimeout = "CALORIC_SHUTDOWN_TIMEOUT"
	EnvCaloricVersion         = "CALORIC_VERSION"
	EnvCaloricScratchDir      = "CALORIC_SCRATCH_DIR"
)

var databaseEnv = &database.Env{
	Host:            "CALORIC_DB_HOST",
	Port:            "CALORIC_DB_PORT",
	Name:            "CALORIC_DB_NAME",
	User:            "CALORIC_DB_USER",
	Password:        "CALORIC_DB_PASSWORD",
	SSLMode:         "CALORIC_DB_SSL_MODE",
	MaxOpenConns:    "CALORIC_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CALORIC_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CALORIC_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CALORIC_DB_CONN_TIMEOUT",
}

// Config is the root configuration for the Caloric service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	API             APIConfig        `toml:"api"`
	Classifier      classify.Config  `toml:"classifier"`
	Portion         portion.Config   `toml:"portion"`
	Nutrition       nutrition.Config `toml:"nutrition"`
	ScratchDir      string           `toml:"scratch_dir"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the CALORIC_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCaloricEnv); env != "" {
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
	if overlay.ScratchDir != "" {
		c.ScratchDir = overlay.ScratchDir
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.API.Merge(&overlay.API)
	c.Classifier.Merge(&overlay.Classifier)
	c.Portion.Merge(&overlay.Portion)
	c.Nutrition.Merge(&overlay.Nutrition)
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
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Nutrition.Finalize(nutritionEnv); err != nil {
		return fmt.Errorf("nutrition: %w", err)
	}
	if c.Nutrition.UsesDatabase() {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if c.Classifier.Backend == classify.BackendAgent {
		if err := FinalizeAgent(&c.Classifier.Agent); err != nil {
			return fmt.Errorf("classifier: agent: %w", err)
		}
	}
	if err := c.Portion.Finalize(portionEnv); err != nil {
		return fmt.Errorf("portion: %w", err)
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
	if v := os.Getenv(EnvCaloricShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCaloricVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvCaloricScratchDir); v != "" {
		c.ScratchDir = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if c.ScratchDir != "" {
		info, err := os.Stat(c.ScratchDir)
		if err != nil {
			return fmt.Errorf("invalid scratch_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("invalid scratch_dir: %s is not a directory", c.ScratchDir)
		}
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
	if env := os.Getenv(EnvCaloricEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
