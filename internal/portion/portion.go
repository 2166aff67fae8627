// Package portion estimates the mass of the food in a meal image by running
// an external segmentation model with an assumed density.
package portion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/pkg/formatting"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

// Estimator produces a mass estimate for an image given a density value.
// Failures wrap invoke.ErrProcessFailed or invoke.ErrMalformedOutput.
type Estimator interface {
	Estimate(ctx context.Context, img asset.Image, density float64) (Estimate, error)
}

// Estimate is a mass estimate in grams plus the estimator's full output,
// carried opaquely for display.
type Estimate struct {
	Grams        *float64        `json:"estimated_grams"`
	Segmentation json.RawMessage `json:"segmentation"`
}

type output struct {
	EstimatedGrams *float64 `json:"estimated_grams"`
	Error          string   `json:"error"`
}

// Parse decodes estimator output of the form {"estimated_grams": 120.5, ...}.
// An {"error": "..."} payload is reported as a process failure; a missing,
// negative or non-finite estimated_grams is malformed.
func Parse(raw []byte) (Estimate, error) {
	content := strings.TrimSpace(string(raw))
	if content == "" {
		return Estimate{}, fmt.Errorf("%w: empty estimator output", invoke.ErrProcessFailed)
	}

	out, err := formatting.Parse[output](content)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: %w", invoke.ErrMalformedOutput, err)
	}

	if out.Error != "" {
		return Estimate{}, fmt.Errorf("%w: estimator error: %s", invoke.ErrProcessFailed, out.Error)
	}

	if out.EstimatedGrams == nil {
		return Estimate{}, fmt.Errorf("%w: missing estimated_grams", invoke.ErrMalformedOutput)
	}

	grams := *out.EstimatedGrams
	if math.IsNaN(grams) || math.IsInf(grams, 0) || grams < 0 {
		return Estimate{}, fmt.Errorf("%w: invalid estimated_grams %v", invoke.ErrMalformedOutput, grams)
	}

	meta, err := segmentation(content)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: %w", invoke.ErrMalformedOutput, err)
	}

	return Estimate{Grams: &grams, Segmentation: meta}, nil
}

// segmentation returns the estimator's JSON object verbatim, unwrapping a
// markdown fence when present.
func segmentation(content string) (json.RawMessage, error) {
	if json.Valid([]byte(content)) {
		return json.RawMessage(content), nil
	}
	obj, err := formatting.Parse[json.RawMessage](content)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// FormatDensity renders a density for command-line and form arguments.
func FormatDensity(density float64) string {
	return strconv.FormatFloat(density, 'f', -1, 64)
}

func parseLogged(ctx context.Context, logger *slog.Logger, raw []byte) (Estimate, error) {
	est, err := Parse(raw)
	if err != nil {
		if errors.Is(err, invoke.ErrMalformedOutput) {
			logger.ErrorContext(ctx, "malformed estimator output", "raw", string(raw), "error", err)
		}
		return Estimate{}, err
	}
	return est, nil
}
