// Package httpx provides JSON response utilities shared by every handler.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Detail carries a single human-readable message, mirroring the
// {"detail": "..."} shape used for auth and availability failures.
type Detail struct {
	Detail string `json:"detail"`
}

// FieldErrors maps a request field to the validation messages raised
// against it, e.g. {"date": ["Enter a valid date."]}.
type FieldErrors map[string][]string

// Add appends a message for the named field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// ValidationError sends a field-tagged 400 response.
func ValidationError(w http.ResponseWriter, fields FieldErrors) {
	JSON(w, http.StatusBadRequest, fields)
}

// Forbidden sends the standard permission-denied detail response.
func Forbidden(w http.ResponseWriter) {
	JSON(w, http.StatusForbidden, Detail{Detail: "You do not have permission to perform this action."})
}

// Unauthorized sends a 401 with the supplied detail message.
func Unauthorized(w http.ResponseWriter, detail string) {
	JSON(w, http.StatusUnauthorized, Detail{Detail: detail})
}

// NotFound sends the standard missing-resource detail response.
func NotFound(w http.ResponseWriter) {
	JSON(w, http.StatusNotFound, Detail{Detail: "Not found."})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
