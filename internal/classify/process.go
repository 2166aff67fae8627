package classify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

// Runner executes an external command with placeholder values and returns its output.
type Runner interface {
	Run(ctx context.Context, vars map[string]string) ([]byte, error)
}

type processClassifier struct {
	runner Runner
	logger *slog.Logger
}

// NewProcess creates a Classifier that runs an external command. The image
// path is available to the command's args as {image}.
func NewProcess(runner Runner, logger *slog.Logger) Classifier {
	return &processClassifier{runner: runner, logger: logger}
}

func (c *processClassifier) Classify(ctx context.Context, img asset.Image) (Result, error) {
	out, err := c.runner.Run(ctx, map[string]string{"image": img.Path})
	if err != nil {
		return nil, err
	}
	return parseLogged(ctx, c.logger, out)
}

func parseLogged(ctx context.Context, logger *slog.Logger, raw []byte) (Result, error) {
	result, err := Parse(raw)
	if err != nil {
		if errors.Is(err, invoke.ErrMalformedOutput) {
			logger.ErrorContext(ctx, "malformed classifier output", "raw", string(raw), "error", err)
		}
		return nil, err
	}
	return result, nil
}
