package classify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/google/uuid"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/internal/classify"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stage(t *testing.T) asset.Image {
	t.Helper()
	img, err := asset.Stage(t.TempDir(), uuid.New(), "meal.JPG", []byte("\xff\xd8\xff\xe0jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	return img
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantLabels []string
		wantErr    error
	}{
		{
			name:       "sorted by confidence",
			raw:        `{"predictions":[{"label":"rice","confidence":0.2},{"label":"sushi","confidence":0.7},{"label":"miso","confidence":0.1}]}`,
			wantLabels: []string{"sushi", "rice", "miso"},
		},
		{
			name:       "ties keep producer order",
			raw:        `{"predictions":[{"label":"toast","confidence":0.5},{"label":"bagel","confidence":0.5}]}`,
			wantLabels: []string{"toast", "bagel"},
		},
		{
			name:       "labels trimmed",
			raw:        `{"predictions":[{"label":"  egg_salad ","confidence":0.9}]}`,
			wantLabels: []string{"egg_salad"},
		},
		{
			name:       "fenced output",
			raw:        "```json\n{\"predictions\":[{\"label\":\"pizza\",\"confidence\":1}]}\n```",
			wantLabels: []string{"pizza"},
		},
		{
			name:       "empty predictions",
			raw:        `{"predictions":[]}`,
			wantLabels: []string{},
		},
		{name: "missing predictions", raw: `{"labels":["egg"]}`, wantErr: invoke.ErrMalformedOutput},
		{name: "null predictions", raw: `{"predictions":null}`, wantErr: invoke.ErrMalformedOutput},
		{name: "not json", raw: "Traceback (most recent call last)", wantErr: invoke.ErrMalformedOutput},
		{name: "confidence above one", raw: `{"predictions":[{"label":"egg","confidence":87}]}`, wantErr: invoke.ErrMalformedOutput},
		{name: "negative confidence", raw: `{"predictions":[{"label":"egg","confidence":-0.1}]}`, wantErr: invoke.ErrMalformedOutput},
		{name: "blank label", raw: `{"predictions":[{"label":" ","confidence":0.4}]}`, wantErr: invoke.ErrMalformedOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := classify.Parse([]byte(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if got == nil {
				t.Fatal("Parse returned nil result")
			}
			if strings.Join(got.Labels(), ",") != strings.Join(tt.wantLabels, ",") {
				t.Errorf("labels = %v, want %v", got.Labels(), tt.wantLabels)
			}
		})
	}
}

func TestTop(t *testing.T) {
	if _, ok := (classify.Result{}).Top(); ok {
		t.Error("empty result reported a top prediction")
	}

	r, err := classify.Parse([]byte(`{"predictions":[{"label":"apple","confidence":0.3},{"label":"banana","confidence":0.6}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	top, ok := r.Top()
	if !ok || top.Label != "banana" || top.Confidence != 0.6 {
		t.Errorf("Top = %+v, %v", top, ok)
	}
}

type runnerFunc func(ctx context.Context, vars map[string]string) ([]byte, error)

func (f runnerFunc) Run(ctx context.Context, vars map[string]string) ([]byte, error) {
	return f(ctx, vars)
}

func TestProcessClassifier(t *testing.T) {
	img := stage(t)

	t.Run("passes image path", func(t *testing.T) {
		var got string
		c := classify.NewProcess(runnerFunc(func(_ context.Context, vars map[string]string) ([]byte, error) {
			got = vars["image"]
			return []byte(`{"predictions":[{"label":"steak","confidence":0.8}]}`), nil
		}), discard())

		r, err := c.Classify(context.Background(), img)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if got != img.Path {
			t.Errorf("image var = %q, want %q", got, img.Path)
		}
		if top, _ := r.Top(); top.Label != "steak" {
			t.Errorf("top = %+v", top)
		}
	})

	t.Run("runner failure propagates", func(t *testing.T) {
		c := classify.NewProcess(runnerFunc(func(context.Context, map[string]string) ([]byte, error) {
			return nil, invoke.ErrProcessFailed
		}), discard())

		if _, err := c.Classify(context.Background(), img); !errors.Is(err, invoke.ErrProcessFailed) {
			t.Errorf("error = %v, want ErrProcessFailed", err)
		}
	})

	t.Run("real command", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "classify.sh")
		body := "#!/bin/sh\n" +
			"test -f \"$1\" || exit 2\n" +
			"echo '{\"predictions\":[{\"label\":\"egg\",\"confidence\":0.92},{\"label\":\"toast\",\"confidence\":0.05}]}'\n"
		if err := os.WriteFile(path, []byte(body), 0700); err != nil {
			t.Fatalf("write script: %v", err)
		}

		cfg := &invoke.ProcessConfig{Command: "sh", Args: []string{path, "{image}"}}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}

		r, err := classify.NewProcess(invoke.NewProcess(cfg), discard()).Classify(context.Background(), img)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if strings.Join(r.Labels(), ",") != "egg,toast" {
			t.Errorf("labels = %v", r.Labels())
		}
	})
}

type detector struct {
	out   *rekognition.DetectLabelsOutput
	err   error
	input *rekognition.DetectLabelsInput
}

func (d *detector) DetectLabels(
	_ context.Context,
	params *rekognition.DetectLabelsInput,
	_ ...func(*rekognition.Options),
) (*rekognition.DetectLabelsOutput, error) {
	d.input = params
	return d.out, d.err
}

func label(name string, confidence float32) types.Label {
	return types.Label{Name: aws.String(name), Confidence: aws.Float32(confidence)}
}

func TestRekognitionClassifier(t *testing.T) {
	cfg := &classify.RekognitionConfig{Region: "us-east-1"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	t.Run("drops generic labels and rescales", func(t *testing.T) {
		d := &detector{out: &rekognition.DetectLabelsOutput{Labels: []types.Label{
			label("Food", 99.9),
			label("Banana", 80),
			label("Apple", 92.5),
			label("Plate", 88),
		}}}

		r, err := classify.NewRekognition(d, cfg, discard()).Classify(context.Background(), stage(t))
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}

		if strings.Join(r.Labels(), ",") != "Apple,Banana" {
			t.Errorf("labels = %v", r.Labels())
		}
		if top, _ := r.Top(); math.Abs(top.Confidence-0.925) > 1e-6 {
			t.Errorf("confidence = %v, want 0.925", top.Confidence)
		}
		if aws.ToInt32(d.input.MaxLabels) != 5 || aws.ToFloat32(d.input.MinConfidence) != 75 {
			t.Errorf("input = max %d min %v", aws.ToInt32(d.input.MaxLabels), aws.ToFloat32(d.input.MinConfidence))
		}
		if len(d.input.Image.Bytes) == 0 {
			t.Error("image bytes not sent")
		}
	})

	t.Run("api error", func(t *testing.T) {
		d := &detector{err: errors.New("throttled")}
		_, err := classify.NewRekognition(d, cfg, discard()).Classify(context.Background(), stage(t))
		if !errors.Is(err, invoke.ErrProcessFailed) {
			t.Errorf("error = %v, want ErrProcessFailed", err)
		}
	})

	t.Run("only generic labels", func(t *testing.T) {
		d := &detector{out: &rekognition.DetectLabelsOutput{Labels: []types.Label{label("Meal", 97)}}}
		r, err := classify.NewRekognition(d, cfg, discard()).Classify(context.Background(), stage(t))
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if _, ok := r.Top(); ok {
			t.Errorf("expected empty result, got %v", r)
		}
	})
}

func TestDataURI(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name        string
		contentType string
		wantPrefix  string
	}{
		{"declared type", "image/jpeg", "data:image/jpeg;base64,"},
		{"sniffed type", "", "data:image/png;base64,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify.DataURI(png, tt.contentType); !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("DataURI = %q, want prefix %q", got[:min(len(got), 40)], tt.wantPrefix)
			}
		})
	}
}
