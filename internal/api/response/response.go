// Package response writes the JSON envelopes of the HTTP API.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// SuccessResponse represents a successful API response with data.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, err error) {
	Error(w, http.StatusUnauthorized, err)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err)
}

// FromError writes err with the status matching its kind.
func FromError(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err)
}

// StatusFor maps facade and storage errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, facade.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, facade.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable
	}

	switch storage.Kind(err) {
	case storage.ErrNotFound:
		return http.StatusNotFound
	case storage.ErrPermission:
		return http.StatusForbidden
	case storage.ErrConflict:
		return http.StatusConflict
	case storage.ErrQuota:
		return http.StatusInsufficientStorage
	case storage.ErrNetwork:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
