package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/caloric/internal/api"
	"github.com/JaimeStill/caloric/internal/config"
	"github.com/JaimeStill/caloric/internal/infrastructure"
	"github.com/JaimeStill/caloric/pkg/middleware"
	"github.com/JaimeStill/caloric/pkg/module"
)

// buildRouter mounts the API module and registers the native health routes
// plus the root-level POST /estimate alias.
func buildRouter(
	cfg *config.Config,
	infra *infrastructure.Infrastructure,
	runtime *api.Runtime,
	domain *api.Domain,
) (*module.Router, error) {
	apiModule, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	router := module.NewRouter()
	router.Mount(apiModule)

	estimate := domain.Estimates.Handler(cfg.API.MaxUploadSizeBytes())
	native := middleware.New()
	native.Use(middleware.CORS(&cfg.API.CORS))
	native.Use(middleware.Logger(infra.Logger))
	router.HandleNative("POST /estimate", native.Apply(http.HandlerFunc(estimate.Estimate)).ServeHTTP)

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return router, nil
}
