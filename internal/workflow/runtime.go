package workflow

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/caloric/internal/classify"
	"github.com/JaimeStill/caloric/internal/density"
	"github.com/JaimeStill/caloric/internal/nutrition"
	"github.com/JaimeStill/caloric/internal/portion"
)

// Resolver resolves per-100g nutrition for a label, returning nil on a miss.
type Resolver interface {
	Resolve(ctx context.Context, label string) nutrition.Record
}

// Runtime bundles the collaborators that workflow stages require.
// It is constructed by higher-level composition code from configuration.
type Runtime struct {
	Classifier classify.Classifier
	Estimator  portion.Estimator
	Nutrition  Resolver
	Density    density.Rules
	Logger     *slog.Logger
}
