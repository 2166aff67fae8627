// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, nutrition table, optional database)
// that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/caloric/internal/config"
	"github.com/JaimeStill/caloric/internal/nutrition"
	"github.com/JaimeStill/caloric/pkg/database"
	"github.com/JaimeStill/caloric/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil unless the nutrition table is sourced from Postgres.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Table     *nutrition.Table

	loadTimeout time.Duration
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	table, err := nutrition.DefaultTable(cfg.Nutrition.FuzzyDistance)
	if err != nil {
		return nil, fmt.Errorf("nutrition table init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Table:     table,
	}

	if cfg.Nutrition.UsesDatabase() {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.loadTimeout = cfg.Database.ConnTimeoutDuration()
	}

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// When a database is configured, the nutrition table is reloaded from it
// during startup; the embedded table remains in place if that load fails.
func (i *Infrastructure) Start() error {
	if i.Database == nil {
		i.Logger.Info("nutrition table ready", "source", nutrition.SourceEmbedded, "entries", i.Table.Len())
		return nil
	}

	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}

	i.Lifecycle.OnStartup(func() {
		ctx, cancel := context.WithTimeout(i.Lifecycle.Context(), i.loadTimeout)
		defer cancel()

		if err := nutrition.LoadTable(ctx, i.Database.Connection(), i.Table); err != nil {
			i.Logger.Error("nutrition table load failed", "error", err)
			return
		}

		i.Logger.Info("nutrition table ready", "source", nutrition.SourceDatabase, "entries", i.Table.Len())
	})

	return nil
}
