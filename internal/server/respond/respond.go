// Package respond holds the JSON response helpers shared by HTTP handlers and
// middleware.
package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes an error JSON response.
func Error(w http.ResponseWriter, statusCode int, code, message string) {
	JSON(w, statusCode, ErrorResponse{Error: code, Message: message})
}

// Unauthorized writes the single generic 401 body. Every authentication
// failure uses this exact response so a caller cannot distinguish a bad
// password from an expired token from a revoked session.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
}

// Forbidden writes a 403 naming the missing permission.
func Forbidden(w http.ResponseWriter, missing string) {
	Error(w, http.StatusForbidden, "forbidden", "missing permission "+missing)
}
