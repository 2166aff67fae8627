package estimates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/internal/workflow"
)

type service struct {
	rt      *workflow.Runtime
	scratch string
	logger  *slog.Logger
}

// New creates an estimate service implementing the System interface.
// Uploaded images are staged under scratch, or the OS temp dir when empty.
func New(rt *workflow.Runtime, scratch string, logger *slog.Logger) System {
	return &service{
		rt:      rt,
		scratch: scratch,
		logger:  logger.With("system", "estimates"),
	}
}

func (s *service) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, maxUploadSize)
}

func (s *service) Estimate(ctx context.Context, cmd EstimateCommand) (*workflow.Result, error) {
	if len(cmd.Data) == 0 {
		return nil, ErrNoImage
	}

	runID := uuid.New()

	dir, err := os.MkdirTemp(s.scratch, "caloric-"+runID.String())
	if err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("run cleanup failed", "run_id", runID, "error", err)
		}
	}()

	img, err := asset.Stage(dir, runID, cmd.Filename, cmd.Data, cmd.ContentType)
	if err != nil {
		if errors.Is(err, asset.ErrEmpty) {
			return nil, ErrNoImage
		}
		return nil, err
	}

	s.logger.Info(
		"estimate started",
		"run_id", runID,
		"filename", cmd.Filename,
		"size", img.Size,
		"reference", cmd.Reference != "",
	)

	return workflow.Execute(ctx, s.rt, img)
}
