package api

import (
	"fmt"

	"github.com/JaimeStill/caloric/internal/config"
	"github.com/JaimeStill/caloric/internal/estimates"
	"github.com/JaimeStill/caloric/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for every domain route and
// serializes it once for serving.
func buildSpec(cfg *config.Config) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	for path, item := range estimates.Paths() {
		spec.Paths[path] = item
	}
	spec.Components.AddSchemas(estimates.Schemas())

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
