package estimates

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/caloric/pkg/formatting"
	"github.com/JaimeStill/caloric/pkg/handlers"
	"github.com/JaimeStill/caloric/pkg/routes"
)

const internalError = "Internal server error"

// Handler provides HTTP endpoints for estimate operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "estimates"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for estimate endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/estimate",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Estimate},
		},
	}
}

// Estimate accepts a multipart upload with an image field and an optional
// reference field, and responds with the estimation result.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: limit %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 1))
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoImage)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoImage)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondFailure(w, h.logger, http.StatusInternalServerError, internalError, err)
		return
	}

	cmd := EstimateCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		Reference:   r.FormValue("reference"),
	}

	result, err := h.sys.Estimate(r.Context(), cmd)
	if err != nil {
		status := MapHTTPStatus(err)
		if status == http.StatusInternalServerError {
			handlers.RespondFailure(w, h.logger, status, internalError, err)
			return
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, NewResponse(result))
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
