package estimates

import (
	"context"

	"github.com/JaimeStill/caloric/internal/workflow"
)

// System defines the public contract for estimate operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	Estimate(ctx context.Context, cmd EstimateCommand) (*workflow.Result, error)
}
