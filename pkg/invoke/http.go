package invoke

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// Endpoint posts images to a model server and returns the response body.
type Endpoint struct {
	url    string
	client *http.Client
}

// NewEndpoint creates an Endpoint from a finalized HTTPConfig.
func NewEndpoint(cfg *HTTPConfig) *Endpoint {
	return &Endpoint{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.TimeoutDuration()},
	}
}

// PostFile uploads the file at path as the multipart field "image" along with
// any extra form fields. Transport errors, non-2xx statuses and empty bodies
// wrap ErrProcessFailed.
func (e *Endpoint) PostFile(ctx context.Context, path string, fields map[string]string) ([]byte, error) {
	body, contentType, err := multipartBody(path, fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrProcessFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: post %s: %w", ErrProcessFailed, e.url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrProcessFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf(
			"%w: %s returned status %d%s",
			ErrProcessFailed, e.url, resp.StatusCode, diagnostic(data),
		)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s returned no output", ErrProcessFailed, e.url)
	}

	return data, nil
}

func multipartBody(path string, fields map[string]string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy image: %w", err)
	}

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
