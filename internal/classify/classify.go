// Package classify identifies the food in a meal image. Classifiers are
// interchangeable backends (local command, HTTP model server, AWS Rekognition,
// vision agent) that all produce a ranked Result.
package classify

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/pkg/formatting"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

// Classifier runs a food classifier against a staged image.
// Failures wrap invoke.ErrProcessFailed or invoke.ErrMalformedOutput.
type Classifier interface {
	Classify(ctx context.Context, img asset.Image) (Result, error)
}

// Prediction is a single classifier label with its confidence in [0, 1].
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Result holds predictions ordered by descending confidence. It may be empty
// but is never nil.
type Result []Prediction

// Top returns the highest-confidence prediction. The boolean is false when
// the classifier found nothing.
func (r Result) Top() (Prediction, bool) {
	if len(r) == 0 {
		return Prediction{}, false
	}
	return r[0], true
}

// Labels returns the prediction labels in rank order.
func (r Result) Labels() []string {
	labels := make([]string, len(r))
	for i, p := range r {
		labels[i] = p.Label
	}
	return labels
}

type output struct {
	Predictions *[]Prediction `json:"predictions"`
}

// Parse decodes classifier output of the form
// {"predictions": [{"label": "...", "confidence": 0.9}, ...]}.
// Markdown-fenced JSON is accepted.
func Parse(raw []byte) (Result, error) {
	out, err := formatting.Parse[output](string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoke.ErrMalformedOutput, err)
	}
	if out.Predictions == nil {
		return nil, fmt.Errorf("%w: missing predictions", invoke.ErrMalformedOutput)
	}
	return normalize(*out.Predictions)
}

// normalize validates predictions and orders them by descending confidence,
// keeping the producer's order for ties.
func normalize(predictions []Prediction) (Result, error) {
	result := make(Result, 0, len(predictions))

	for i, p := range predictions {
		p.Label = strings.TrimSpace(p.Label)
		if p.Label == "" {
			return nil, fmt.Errorf("%w: prediction %d has no label", invoke.ErrMalformedOutput, i)
		}
		if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
			return nil, fmt.Errorf(
				"%w: prediction %d confidence %v outside [0,1]",
				invoke.ErrMalformedOutput, i, p.Confidence,
			)
		}
		result = append(result, p)
	}

	slices.SortStableFunc(result, func(a, b Prediction) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})

	return result, nil
}
