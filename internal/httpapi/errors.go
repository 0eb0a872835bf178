package httpapi

import (
	"encoding/json"
	"net/http"

	"visiond/internal/engine"
	"visiond/internal/pixels"
	"visiond/internal/registry"
	"visiond/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps well-known engine/boundary errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case pixels.IsInvalidDimensions(err),
		pixels.IsInvalidPixelBuffer(err),
		pixels.IsUnsupportedPixelFormat(err),
		pixels.IsImageCreationFailed(err),
		engine.IsInvalidOptions(err):
		return http.StatusBadRequest
	case registry.IsDirectoryMissing(err), registry.IsResourcesMissing(err):
		return http.StatusNotFound
	case engine.IsCancelled(err):
		return http.StatusConflict
	case engine.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// failureReason buckets an error for the describe-failure metric.
func failureReason(err error) string {
	switch {
	case pixels.IsInvalidDimensions(err), pixels.IsInvalidPixelBuffer(err),
		pixels.IsUnsupportedPixelFormat(err), pixels.IsImageCreationFailed(err):
		return "invalid_input"
	case registry.IsDirectoryMissing(err), registry.IsResourcesMissing(err):
		return "model_missing"
	case engine.IsCancelled(err):
		return "cancelled"
	case engine.IsDependencyUnavailable(err):
		return "dependency_unavailable"
	}
	return "internal"
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
