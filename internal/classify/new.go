package classify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/caloric/pkg/invoke"
)

// New creates the Classifier selected by cfg.Backend from a finalized Config.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Classifier, error) {
	logger = logger.With("system", "classifier", "backend", cfg.Backend)

	switch cfg.Backend {
	case BackendProcess:
		return NewProcess(invoke.NewProcess(&cfg.Process), logger), nil
	case BackendHTTP:
		return NewHTTP(invoke.NewEndpoint(&cfg.HTTP), logger), nil
	case BackendRekognition:
		client, err := newRekognitionClient(ctx, &cfg.Rekognition)
		if err != nil {
			return nil, fmt.Errorf("rekognition: %w", err)
		}
		return NewRekognition(client, &cfg.Rekognition, logger), nil
	case BackendAgent:
		return NewAgent(cfg.Agent, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
