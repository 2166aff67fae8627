package main

import (
	"time"

	"github.com/JaimeStill/caloric/internal/api"
	"github.com/JaimeStill/caloric/internal/config"
	"github.com/JaimeStill/caloric/internal/infrastructure"
)

// Server wires infrastructure, the API domain, and the HTTP listener.
type Server struct {
	infra *infrastructure.Infrastructure
	http  *httpServer
}

// NewServer builds all systems from cfg without starting them.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	runtime, err := api.NewRuntime(infra.Lifecycle.Context(), cfg, infra)
	if err != nil {
		return nil, err
	}
	domain := api.NewDomain(runtime)

	router, err := buildRouter(cfg, infra, runtime, domain)
	if err != nil {
		return nil, err
	}

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"classifier", cfg.Classifier.Backend,
		"estimator", cfg.Portion.Backend,
		"nutrition_source", cfg.Nutrition.Source,
	)

	return &Server{
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start registers infrastructure hooks, starts the listener, and marks the
// service ready once all startup hooks complete.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown cancels the lifecycle context and waits for shutdown hooks.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
