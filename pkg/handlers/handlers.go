// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."} with the given status code.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("handler error", "error", err, "status", status)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// RespondFailure logs err and writes {"error": message, "details": err} with the given status code.
// Used where the public message is fixed and the underlying cause is reported separately.
func RespondFailure(w http.ResponseWriter, logger *slog.Logger, status int, message string, err error) {
	logger.Error("handler failure", "error", err, "status", status)
	RespondJSON(w, status, map[string]string{
		"error":   message,
		"details": err.Error(),
	})
}
