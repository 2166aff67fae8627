package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

// LabelDetector is the subset of the Rekognition client used for classification.
type LabelDetector interface {
	DetectLabels(
		ctx context.Context,
		params *rekognition.DetectLabelsInput,
		optFns ...func(*rekognition.Options),
	) (*rekognition.DetectLabelsOutput, error)
}

type rekognitionClassifier struct {
	client        LabelDetector
	maxLabels     int32
	minConfidence float32
	exclude       map[string]struct{}
	logger        *slog.Logger
}

// NewRekognition creates a Classifier backed by AWS Rekognition DetectLabels.
// Generic labels listed in cfg.ExcludeLabels (e.g. "Food") are dropped and
// confidences are rescaled from percentages to [0, 1].
func NewRekognition(client LabelDetector, cfg *RekognitionConfig, logger *slog.Logger) Classifier {
	exclude := make(map[string]struct{}, len(cfg.ExcludeLabels))
	for _, l := range cfg.ExcludeLabels {
		exclude[strings.ToLower(l)] = struct{}{}
	}

	return &rekognitionClassifier{
		client:        client,
		maxLabels:     cfg.MaxLabels,
		minConfidence: cfg.MinConfidence,
		exclude:       exclude,
		logger:        logger,
	}
}

func newRekognitionClient(ctx context.Context, cfg *RekognitionConfig) (*rekognition.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return rekognition.NewFromConfig(awsCfg), nil
}

func (c *rekognitionClassifier) Classify(ctx context.Context, img asset.Image) (Result, error) {
	data, err := img.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoke.ErrProcessFailed, err)
	}

	out, err := c.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: data},
		MaxLabels:     aws.Int32(c.maxLabels),
		MinConfidence: aws.Float32(c.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: detect labels: %w", invoke.ErrProcessFailed, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: detect labels returned no output", invoke.ErrProcessFailed)
	}

	predictions := make([]Prediction, 0, len(out.Labels))
	for _, l := range out.Labels {
		name := aws.ToString(l.Name)
		if _, skip := c.exclude[strings.ToLower(name)]; skip {
			continue
		}
		predictions = append(predictions, Prediction{
			Label:      name,
			Confidence: float64(aws.ToFloat32(l.Confidence)) / 100,
		})
	}

	result, err := normalize(predictions)
	if err != nil {
		c.logger.ErrorContext(ctx, "malformed rekognition labels", "labels", len(out.Labels), "error", err)
		return nil, err
	}
	return result, nil
}
