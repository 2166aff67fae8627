package classify

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/caloric/pkg/invoke"
)

// Classifier backend names.
const (
	BackendProcess     = "process"
	BackendHTTP        = "http"
	BackendRekognition = "rekognition"
	BackendAgent       = "agent"
)

// Config selects and configures the classifier backend. Only the section
// matching Backend is validated.
type Config struct {
	Backend     string               `toml:"backend"`
	Process     invoke.ProcessConfig `toml:"process"`
	HTTP        invoke.HTTPConfig    `toml:"http"`
	Rekognition RekognitionConfig    `toml:"rekognition"`
	Agent       gaconfig.AgentConfig `toml:"agent"`
}

// Env maps classifier config fields to environment variable names.
type Env struct {
	Backend     string
	Process     *invoke.ProcessEnv
	HTTP        *invoke.HTTPEnv
	Rekognition *RekognitionEnv
}

// Finalize applies defaults, environment variable overrides, and validation
// for the selected backend. Agent settings are finalized by the caller.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil && env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = v
		}
	}

	if env == nil {
		env = &Env{}
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
	case BackendRekognition:
		if err := c.Rekognition.Finalize(env.Rekognition); err != nil {
			return fmt.Errorf("rekognition: %w", err)
		}
	case BackendAgent:
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
	c.Rekognition.Merge(&overlay.Rekognition)
	c.Agent.Merge(&overlay.Agent)
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendProcess
	}
	if c.Process.Command == "" {
		c.Process.Command = "python"
	}
	if c.Process.Args == nil {
		c.Process.Args = []string{"scripts/estimate.py", "{image}"}
	}
}

// RekognitionConfig holds AWS Rekognition DetectLabels parameters.
type RekognitionConfig struct {
	Region        string   `toml:"region"`
	MaxLabels     int32    `toml:"max_labels"`
	MinConfidence float32  `toml:"min_confidence"`
	ExcludeLabels []string `toml:"exclude_labels"`
}

// RekognitionEnv maps Rekognition config fields to environment variable names.
type RekognitionEnv struct {
	Region        string
	MaxLabels     string
	MinConfidence string
	ExcludeLabels string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RekognitionConfig) Finalize(env *RekognitionEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RekognitionConfig) Merge(overlay *RekognitionConfig) {
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.MaxLabels != 0 {
		c.MaxLabels = overlay.MaxLabels
	}
	if overlay.MinConfidence != 0 {
		c.MinConfidence = overlay.MinConfidence
	}
	if overlay.ExcludeLabels != nil {
		c.ExcludeLabels = overlay.ExcludeLabels
	}
}

func (c *RekognitionConfig) loadDefaults() {
	if c.MaxLabels == 0 {
		c.MaxLabels = 5
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = 75
	}
	if c.ExcludeLabels == nil {
		c.ExcludeLabels = []string{"Food", "Meal", "Dish", "Plate", "Produce", "Lunch", "Dinner"}
	}
}

func (c *RekognitionConfig) loadEnv(env *RekognitionEnv) {
	if env.Region != "" {
		if v := os.Getenv(env.Region); v != "" {
			c.Region = v
		}
	}
	if env.MaxLabels != "" {
		if v := os.Getenv(env.MaxLabels); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.MaxLabels = int32(n)
			}
		}
	}
	if env.MinConfidence != "" {
		if v := os.Getenv(env.MinConfidence); v != "" {
			if f, err := strconv.ParseFloat(v, 32); err == nil {
				c.MinConfidence = float32(f)
			}
		}
	}
	if env.ExcludeLabels != "" {
		if v := os.Getenv(env.ExcludeLabels); v != "" {
			labels := strings.Split(v, ",")
			c.ExcludeLabels = make([]string, 0, len(labels))
			for _, l := range labels {
				if trimmed := strings.TrimSpace(l); trimmed != "" {
					c.ExcludeLabels = append(c.ExcludeLabels, trimmed)
				}
			}
		}
	}
}

func (c *RekognitionConfig) validate() error {
	if c.Region == "" {
		return fmt.Errorf("region required")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return fmt.Errorf("invalid min_confidence: %v", c.MinConfidence)
	}
	return nil
}
