package portion_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/internal/portion"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantGrams float64
		wantErr   error
	}{
		{name: "grams with metadata", raw: `{"estimated_grams":182.4,"mask_pixels":5120,"volume_cm3":608}`, wantGrams: 182.4},
		{name: "zero grams", raw: `{"estimated_grams":0}`, wantGrams: 0},
		{name: "fenced", raw: "```json\n{\"estimated_grams\":90}\n```", wantGrams: 90},
		{name: "empty output", raw: "", wantErr: invoke.ErrProcessFailed},
		{name: "blank output", raw: " \n\t", wantErr: invoke.ErrProcessFailed},
		{name: "error payload", raw: `{"error":"no food region found"}`, wantErr: invoke.ErrProcessFailed},
		{name: "not json", raw: "Loading U2NET...", wantErr: invoke.ErrMalformedOutput},
		{name: "missing grams", raw: `{"volume_cm3":608}`, wantErr: invoke.ErrMalformedOutput},
		{name: "null grams", raw: `{"estimated_grams":null}`, wantErr: invoke.ErrMalformedOutput},
		{name: "negative grams", raw: `{"estimated_grams":-4}`, wantErr: invoke.ErrMalformedOutput},
		{name: "string grams", raw: `{"estimated_grams":"120"}`, wantErr: invoke.ErrMalformedOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := portion.Parse([]byte(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if got.Grams != nil {
					t.Errorf("grams set on failure: %v", *got.Grams)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if got.Grams == nil || *got.Grams != tt.wantGrams {
				t.Fatalf("grams = %v, want %v", got.Grams, tt.wantGrams)
			}
			if !json.Valid(got.Segmentation) {
				t.Errorf("segmentation not valid JSON: %s", got.Segmentation)
			}
		})
	}
}

func TestParseKeepsSegmentation(t *testing.T) {
	raw := `{"estimated_grams":120,"bbox":[10,20,200,180]}`
	got, err := portion.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var meta map[string]any
	if err := json.Unmarshal(got.Segmentation, &meta); err != nil {
		t.Fatalf("unmarshal segmentation: %v", err)
	}
	if _, ok := meta["bbox"]; !ok {
		t.Errorf("segmentation lost bbox: %s", got.Segmentation)
	}
}

func TestReference(t *testing.T) {
	tests := []struct {
		grams float64
		want  string
	}{
		{0, "About 2 tablespoons"},
		{30, "About 2 tablespoons"},
		{30.5, "About 1/4 cup"},
		{60, "About 1/4 cup"},
		{120, "About 1/2 cup"},
		{200, "About 1 cup"},
		{480, "About 2 cups"},
		{481, "More than 2 cups"},
	}

	for _, tt := range tests {
		if got := portion.Reference(tt.grams); got != tt.want {
			t.Errorf("Reference(%v) = %q, want %q", tt.grams, got, tt.want)
		}
	}
}

func TestFormatDensity(t *testing.T) {
	tests := map[float64]string{0.3: "0.3", 0.6: "0.6", 1: "1", 0.25: "0.25"}
	for in, want := range tests {
		if got := portion.FormatDensity(in); got != want {
			t.Errorf("FormatDensity(%v) = %q, want %q", in, got, want)
		}
	}
}

type runnerFunc func(ctx context.Context, vars map[string]string) ([]byte, error)

func (f runnerFunc) Run(ctx context.Context, vars map[string]string) ([]byte, error) {
	return f(ctx, vars)
}

func stage(t *testing.T) asset.Image {
	t.Helper()
	img, err := asset.Stage(t.TempDir(), uuid.New(), "plate.png", []byte("\x89PNG\r\n\x1a\n"), "image/png")
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	return img
}

func TestProcessEstimator(t *testing.T) {
	img := stage(t)

	var vars map[string]string
	e := portion.NewProcess(runnerFunc(func(_ context.Context, v map[string]string) ([]byte, error) {
		vars = v
		return []byte(`{"estimated_grams":75.5}`), nil
	}), discard())

	est, err := e.Estimate(context.Background(), img, 0.6)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if *est.Grams != 75.5 {
		t.Errorf("grams = %v", *est.Grams)
	}
	if vars["image"] != img.Path || vars["density"] != "0.6" {
		t.Errorf("vars = %v", vars)
	}
}

func TestProcessEstimatorEmptyOutput(t *testing.T) {
	e := portion.NewProcess(runnerFunc(func(context.Context, map[string]string) ([]byte, error) {
		return []byte{}, nil
	}), discard())

	_, err := e.Estimate(context.Background(), stage(t), 0.3)
	if !errors.Is(err, invoke.ErrProcessFailed) {
		t.Errorf("error = %v, want ErrProcessFailed", err)
	}
}

func TestHTTPEstimator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("image"); err != nil {
			http.Error(w, "missing image", http.StatusBadRequest)
			return
		}
		if r.FormValue("density") != "0.25" {
			http.Error(w, "bad density", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"estimated_grams":140}`))
	}))
	defer srv.Close()

	cfg := &invoke.HTTPConfig{URL: srv.URL}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	est, err := portion.NewHTTP(invoke.NewEndpoint(cfg), discard()).Estimate(context.Background(), stage(t), 0.25)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if *est.Grams != 140 {
		t.Errorf("grams = %v", *est.Grams)
	}
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg portion.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Backend != portion.BackendProcess || cfg.Process.Command != "python" {
			t.Errorf("config = %+v", cfg)
		}
		if len(cfg.Process.Args) != 5 || cfg.Process.Args[4] != "{density}" {
			t.Errorf("args = %v", cfg.Process.Args)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := portion.Config{Backend: "grpc"}
		if err := cfg.Finalize(nil); !errors.Is(err, portion.ErrUnknownBackend) {
			t.Errorf("error = %v, want ErrUnknownBackend", err)
		}
	})

	t.Run("new builds selected backend", func(t *testing.T) {
		var cfg portion.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if _, err := portion.New(&cfg, discard()); err != nil {
			t.Errorf("New: %v", err)
		}
	})
}
