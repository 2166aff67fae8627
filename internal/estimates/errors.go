package estimates

import (
	"errors"
	"net/http"
)

// Domain errors for estimate requests.
var (
	ErrNoImage      = errors.New("No image provided")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps estimate domain errors to HTTP status codes. Pipeline
// failures of any kind map to 500.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoImage) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
