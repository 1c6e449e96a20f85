package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	res25joy "github.com/KinkiKnights/res25-joy"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UploadResponse is the JSON body returned for a completed upload.
type UploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	if errors.Is(err, res25joy.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "File not found")
		return
	}

	if errors.Is(err, res25joy.ErrTooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Declared length exceeds the upload limit")
		return
	}

	if errors.Is(err, res25joy.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "invalid_path", "Invalid path")
		return
	}

	// Default internal error
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
