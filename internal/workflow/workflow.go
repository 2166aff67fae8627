// Package workflow implements the estimation pipeline: classify the image,
// choose a density for the top label, then estimate mass and resolve
// nutrition concurrently before aggregating the result.
//
//	classify ──► density ──► estimate mass ──┐
//	    │                                    ├──► aggregate
//	    └──────────► resolve nutrition ──────┘
package workflow

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/internal/nutrition"
	"github.com/JaimeStill/caloric/internal/portion"
)

// Execute runs the estimation pipeline for a staged image. Classification
// and mass estimation failures abort the run; a nutrition miss only leaves
// the nutrition-dependent fields nil.
func Execute(ctx context.Context, rt *Runtime, img asset.Image) (*Result, error) {
	logger := rt.Logger.With("run_id", img.RunID)

	predictions, err := rt.Classifier.Classify(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassifyFailed, err)
	}

	top, found := predictions.Top()
	d := rt.Density.For(top.Label)

	logger.InfoContext(
		ctx, "classify stage complete",
		"label", top.Label,
		"confidence", top.Confidence,
		"labels", predictions.Labels(),
		"density", d,
	)

	est, rec, err := estimateAndResolve(ctx, rt, img, top.Label, d)
	if err != nil {
		return nil, err
	}

	result := Aggregate(top, found, est, rec)
	result.RunID = img.RunID
	result.Density = d
	result.CompletedAt = time.Now()

	logger.InfoContext(
		ctx, "estimate complete",
		"label", result.Name,
		"grams", deref(result.EstimatedGrams),
		"total_calories", deref(result.TotalCalories),
		"key_nutrients", rec.Key(),
	)

	return &result, nil
}

// estimateAndResolve runs mass estimation and nutrition resolution
// concurrently. Only the estimator can fail the group.
func estimateAndResolve(
	ctx context.Context,
	rt *Runtime,
	img asset.Image,
	label string,
	density float64,
) (portion.Estimate, nutrition.Record, error) {
	var (
		est portion.Estimate
		rec nutrition.Record
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e, err := rt.Estimator.Estimate(gctx, img, density)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEstimateFailed, err)
		}
		est = e
		return nil
	})

	g.Go(func() error {
		rec = rt.Nutrition.Resolve(gctx, label)
		return nil
	})

	if err := g.Wait(); err != nil {
		return portion.Estimate{}, nil, err
	}

	return est, rec, nil
}

func deref(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
