package portion

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

// Runner executes an external command with placeholder values and returns its output.
type Runner interface {
	Run(ctx context.Context, vars map[string]string) ([]byte, error)
}

type processEstimator struct {
	runner Runner
	logger *slog.Logger
}

// NewProcess creates an Estimator that runs an external command. The command's
// args may reference {image} and {density}.
func NewProcess(runner Runner, logger *slog.Logger) Estimator {
	return &processEstimator{runner: runner, logger: logger}
}

func (e *processEstimator) Estimate(ctx context.Context, img asset.Image, density float64) (Estimate, error) {
	out, err := e.runner.Run(ctx, map[string]string{
		"image":   img.Path,
		"density": FormatDensity(density),
	})
	if err != nil {
		return Estimate{}, err
	}
	return parseLogged(ctx, e.logger, out)
}

type httpEstimator struct {
	endpoint *invoke.Endpoint
	logger   *slog.Logger
}

// NewHTTP creates an Estimator that uploads the image and density to a model server.
func NewHTTP(endpoint *invoke.Endpoint, logger *slog.Logger) Estimator {
	return &httpEstimator{endpoint: endpoint, logger: logger}
}

func (e *httpEstimator) Estimate(ctx context.Context, img asset.Image, density float64) (Estimate, error) {
	out, err := e.endpoint.PostFile(ctx, img.Path, map[string]string{
		"density": FormatDensity(density),
	})
	if err != nil {
		return Estimate{}, err
	}
	return parseLogged(ctx, e.logger, out)
}
