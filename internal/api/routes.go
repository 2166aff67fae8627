package api

import (
	"net/http"

	"github.com/JaimeStill/caloric/internal/config"
	"github.com/JaimeStill/caloric/pkg/openapi"
	"github.com/JaimeStill/caloric/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	spec []byte,
) {
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	routes.Register(
		mux,
		domain.Estimates.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)
}
