package estimates_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/JaimeStill/caloric/internal/asset"
	"github.com/JaimeStill/caloric/internal/classify"
	"github.com/JaimeStill/caloric/internal/density"
	"github.com/JaimeStill/caloric/internal/estimates"
	"github.com/JaimeStill/caloric/internal/nutrition"
	"github.com/JaimeStill/caloric/internal/portion"
	"github.com/JaimeStill/caloric/internal/workflow"
	"github.com/JaimeStill/caloric/pkg/invoke"
)

var jpeg = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collaborators records every external invocation made during a request.
type collaborators struct {
	mu         sync.Mutex
	label      string
	classifyFn func() (classify.Result, error)
	grams      string
	staged     []string
	classified int
	estimated  int
	remote     map[string]nutrition.Record
	queried    int
}

func (c *collaborators) Classify(_ context.Context, img asset.Image) (classify.Result, error) {
	c.mu.Lock()
	c.classified++
	if _, err := os.Stat(img.Path); err == nil {
		c.staged = append(c.staged, img.Path)
	}
	c.mu.Unlock()

	if c.classifyFn != nil {
		return c.classifyFn()
	}
	return classify.Result{{Label: c.label, Confidence: 0.91}}, nil
}

func (c *collaborators) Run(_ context.Context, _ map[string]string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.estimated++
	return []byte(`{"estimated_grams": ` + c.grams + `, "mask_pixels": 4096}`), nil
}

func (c *collaborators) Lookup(_ context.Context, food string) (nutrition.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queried++
	return c.remote[food], nil
}

func (c *collaborators) invocations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classified + c.estimated + c.queried
}

func newSystem(t *testing.T, c *collaborators) (estimates.System, string) {
	t.Helper()
	logger := discard()
	scratch := t.TempDir()

	table := nutrition.NewTable(map[string]nutrition.Record{
		"egg": {
			nutrition.KeyCalories: {Value: 150, Unit: "kcal"},
			nutrition.KeyFat:      {Value: 10.6, Unit: "g"},
		},
	}, 0)

	rt := &workflow.Runtime{
		Classifier: c,
		Estimator:  portion.NewProcess(c, logger),
		Nutrition:  nutrition.NewResolver(table, c, logger),
		Density:    density.Standard(),
		Logger:     logger,
	}
	return estimates.New(rt, scratch, logger), scratch
}

func upload(t *testing.T, field string, data []byte, extra map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if field != "" {
		fw, err := mw.CreateFormFile(field, "meal.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(data)
	}
	for k, v := range extra {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/estimate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h *estimates.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Estimate(rec, req)
	return rec
}

func decodeItem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Result []map[string]any `json:"result"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Result) != 1 {
		t.Fatalf("result length = %d, want 1", len(body.Result))
	}
	return body.Result[0]
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestEstimateSuccess(t *testing.T) {
	c := &collaborators{label: "egg salad", grams: "120"}
	sys, scratch := newSystem(t, c)
	h := sys.Handler(1 << 20)

	rec := serve(h, upload(t, "image", jpeg, map[string]string{"reference": "coin"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	item := decodeItem(t, rec)

	if item["name"] != "egg salad" {
		t.Errorf("name = %v", item["name"])
	}
	if item["confidence"] != 0.91 {
		t.Errorf("confidence = %v", item["confidence"])
	}
	if item["estimated_grams"] != 120.0 {
		t.Errorf("estimated_grams = %v", item["estimated_grams"])
	}
	if item["total_calories"] != 180.0 {
		t.Errorf("total_calories = %v", item["total_calories"])
	}
	if item["portion_reference"] != "About 1/2 cup" {
		t.Errorf("portion_reference = %v", item["portion_reference"])
	}
	if v, ok := item["nutrition"]; !ok || v != nil {
		t.Errorf("nutrition = %v, want explicit null", v)
	}

	per100g, ok := item["dataPer100g"].(map[string]any)
	if !ok {
		t.Fatalf("dataPer100g = %v", item["dataPer100g"])
	}
	cal, _ := per100g["calories"].(map[string]any)
	if cal["value"] != 150.0 || cal["unit"] != "kcal" {
		t.Errorf("calories = %v", cal)
	}

	seg, _ := item["segmentation"].(map[string]any)
	if seg["mask_pixels"] != 4096.0 {
		t.Errorf("segmentation = %v", item["segmentation"])
	}

	if len(c.staged) != 1 {
		t.Fatalf("classifier saw no staged image: %v", c.staged)
	}
	if _, err := os.Stat(c.staged[0]); !os.IsNotExist(err) {
		t.Errorf("staged image not removed: %v", err)
	}
	entries, _ := os.ReadDir(scratch)
	if len(entries) != 0 {
		t.Errorf("scratch dir not cleaned: %d entries", len(entries))
	}
	if filepath.Ext(c.staged[0]) != ".jpg" {
		t.Errorf("staged extension = %s", filepath.Ext(c.staged[0]))
	}
}

func TestEstimatePartial(t *testing.T) {
	c := &collaborators{label: "mystery dish", grams: "90"}
	sys, _ := newSystem(t, c)

	rec := serve(sys.Handler(1<<20), upload(t, "image", jpeg, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	item := decodeItem(t, rec)
	if item["name"] != "mystery dish" {
		t.Errorf("name = %v", item["name"])
	}
	if item["dataPer100g"] != nil {
		t.Errorf("dataPer100g = %v, want null", item["dataPer100g"])
	}
	if item["total_calories"] != nil {
		t.Errorf("total_calories = %v, want null", item["total_calories"])
	}
	if item["estimated_grams"] != 90.0 {
		t.Errorf("estimated_grams = %v", item["estimated_grams"])
	}
	if c.queried != 1 {
		t.Errorf("remote queried %d times, want 1", c.queried)
	}
}

func TestEstimateNoImage(t *testing.T) {
	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{"missing field", func(t *testing.T) *http.Request {
			return upload(t, "", nil, map[string]string{"reference": "coin"})
		}},
		{"wrong field", func(t *testing.T) *http.Request {
			return upload(t, "photo", jpeg, nil)
		}},
		{"empty file", func(t *testing.T) *http.Request {
			return upload(t, "image", nil, nil)
		}},
		{"not multipart", func(t *testing.T) *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/estimate", bytes.NewReader(jpeg))
			req.Header.Set("Content-Type", "image/jpeg")
			return req
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &collaborators{label: "egg", grams: "50"}
			sys, _ := newSystem(t, c)

			rec := serve(sys.Handler(1<<20), tt.req(t))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			body := decodeError(t, rec)
			if body["error"] != "No image provided" {
				t.Errorf("error = %q", body["error"])
			}
			if n := c.invocations(); n != 0 {
				t.Errorf("collaborators invoked %d times", n)
			}
		})
	}
}

func TestEstimatePipelineFailure(t *testing.T) {
	c := &collaborators{
		grams: "50",
		classifyFn: func() (classify.Result, error) {
			return nil, invoke.ErrMalformedOutput
		},
	}
	sys, _ := newSystem(t, c)

	rec := serve(sys.Handler(1<<20), upload(t, "image", jpeg, nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	body := decodeError(t, rec)
	if body["error"] != "Internal server error" {
		t.Errorf("error = %q", body["error"])
	}
	if body["details"] == "" {
		t.Error("details missing")
	}
	if c.estimated != 0 {
		t.Errorf("estimator ran after classify failure")
	}
}

func TestEstimateTooLarge(t *testing.T) {
	c := &collaborators{label: "egg", grams: "50"}
	sys, _ := newSystem(t, c)

	rec := serve(sys.Handler(1024), upload(t, "image", bytes.Repeat(jpeg, 1024), nil))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if n := c.invocations(); n != 0 {
		t.Errorf("collaborators invoked %d times", n)
	}
}

func TestRoutes(t *testing.T) {
	sys, _ := newSystem(t, &collaborators{})
	group := sys.Handler(1024).Routes()

	if group.Prefix != "/estimate" {
		t.Errorf("prefix = %s", group.Prefix)
	}
	if len(group.Routes) != 1 || group.Routes[0].Method != http.MethodPost {
		t.Errorf("routes = %+v", group.Routes)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{estimates.ErrNoImage, http.StatusBadRequest},
		{estimates.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{workflow.ErrClassifyFailed, http.StatusInternalServerError},
		{workflow.ErrEstimateFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := estimates.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
