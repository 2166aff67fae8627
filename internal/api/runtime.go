package api

import (
	"context"
	"fmt"

	"github.com/JaimeStill/caloric/internal/classify"
	"github.com/JaimeStill/caloric/internal/config"
	"github.com/JaimeStill/caloric/internal/density"
	"github.com/JaimeStill/caloric/internal/infrastructure"
	"github.com/JaimeStill/caloric/internal/nutrition"
	"github.com/JaimeStill/caloric/internal/portion"
	"github.com/JaimeStill/caloric/internal/workflow"
)

// Runtime extends Infrastructure with the estimation pipeline collaborators.
type Runtime struct {
	*infrastructure.Infrastructure
	Workflow   *workflow.Runtime
	ScratchDir string
}

// NewRuntime creates an API runtime with a module-scoped logger and the
// classifier, estimator, and nutrition resolver selected by cfg.
func NewRuntime(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	classifier, err := classify.New(ctx, &cfg.Classifier, logger)
	if err != nil {
		return nil, fmt.Errorf("classifier init failed: %w", err)
	}

	estimator, err := portion.New(&cfg.Portion, logger)
	if err != nil {
		return nil, fmt.Errorf("estimator init failed: %w", err)
	}

	var remote nutrition.Remote
	if !cfg.Nutrition.Remote.Disabled {
		remote = nutrition.NewUSDA(&cfg.Nutrition.Remote, logger)
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Table:     infra.Table,
		},
		Workflow: &workflow.Runtime{
			Classifier: classifier,
			Estimator:  estimator,
			Nutrition:  nutrition.NewResolver(infra.Table, remote, logger),
			Density:    density.Standard(),
			Logger:     logger.With("workflow", "estimate"),
		},
		ScratchDir: cfg.ScratchDir,
	}, nil
}
