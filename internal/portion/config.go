package portion

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/caloric/pkg/invoke"
)

// Estimator backend names.
const (
	BackendProcess = "process"
	BackendHTTP    = "http"
)

// ErrUnknownBackend indicates an estimator backend name with no implementation.
var ErrUnknownBackend = errors.New("unknown estimator backend")

// Config selects and configures the mass estimator backend.
type Config struct {
	Backend string               `toml:"backend"`
	Process invoke.ProcessConfig `toml:"process"`
	HTTP    invoke.HTTPConfig    `toml:"http"`
}

// Env maps estimator config fields to environment variable names.
type Env struct {
	Backend string
	Process *invoke.ProcessEnv
	HTTP    *invoke.HTTPEnv
}

// Finalize applies defaults, environment variable overrides, and validation
// for the selected backend.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env == nil {
		env = &Env{}
	}
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = v
		}
	}

	switch c.Backend {
	case BackendProcess:
		if err := c.Process.Finalize(env.Process); err != nil {
			return fmt.Errorf("process: %w", err)
		}
	case BackendHTTP:
		if err := c.HTTP.Finalize(env.HTTP); err != nil {
			return fmt.Errorf("http: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	c.Process.Merge(&overlay.Process)
	c.HTTP.Merge(&overlay.HTTP)
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendProcess
	}
	if c.Process.Command == "" {
		c.Process.Command = "python"
	}
	if c.Process.Args == nil {
		c.Process.Args = []string{
			"scripts/segment_and_estimate.py",
			"{image}",
			"models/u2net.pth",
			"--density", "{density}",
		}
	}
}

// New creates the Estimator selected by cfg.Backend from a finalized Config.
func New(cfg *Config, logger *slog.Logger) (Estimator, error) {
	logger = logger.With("system", "estimator", "backend", cfg.Backend)

	switch cfg.Backend {
	case BackendProcess:
		return NewProcess(invoke.NewProcess(&cfg.Process), logger), nil
	case BackendHTTP:
		return NewHTTP(invoke.NewEndpoint(&cfg.HTTP), logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
