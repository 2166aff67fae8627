// Package asset stages uploaded meal images to a run-owned location on disk.
package asset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrEmpty indicates an image payload with no bytes.
var ErrEmpty = errors.New("image is empty")

// Image is an uploaded image staged at a filesystem path that external
// collaborators can open. It is owned by a single estimation run.
type Image struct {
	RunID       uuid.UUID `json:"run_id"`
	Path        string    `json:"path"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
}

// Stage writes data into dir as <runID><ext>, keeping only the extension of
// the client-supplied filename.
func Stage(dir string, runID uuid.UUID, filename string, data []byte, contentType string) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmpty
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "." {
		ext = ""
	}
	path := filepath.Join(dir, runID.String()+ext)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return Image{}, fmt.Errorf("write image: %w", err)
	}

	return Image{
		RunID:       runID,
		Path:        path,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Read returns the staged image bytes.
func (i Image) Read() ([]byte, error) {
	data, err := os.ReadFile(i.Path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
