package classify

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

type httpClassifier struct {
	endpoint *invoke.Endpoint
	logger   *slog.Logger
}

// NewHTTP creates a Classifier that uploads the image to a model server.
func NewHTTP(endpoint *invoke.Endpoint, logger *slog.Logger) Classifier {
	return &httpClassifier{endpoint: endpoint, logger: logger}
}

func (c *httpClassifier) Classify(ctx context.Context, img asset.Image) (Result, error) {
	out, err := c.endpoint.PostFile(ctx, img.Path, nil)
	if err != nil {
		return nil, err
	}
	return parseLogged(ctx, c.logger, out)
}
