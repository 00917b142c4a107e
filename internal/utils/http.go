package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/field-crm/models"
)

// WriteJSON serializes data to JSON and writes it to w with statusCode and
// the "application/json" content type.
//
// If marshaling fails, it responds with 500 Internal Server Error
// and returns a wrapped error.
//
// Example usage:
//
//	WriteJSON(w, result, http.StatusOK)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteError writes a {"message": ...} body, the same error shape the remote
// API uses.
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	_, _ = WriteJSON(w, models.ErrorResponse{Message: message}, statusCode)
}
