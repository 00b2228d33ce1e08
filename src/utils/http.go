package utils

import (
	"encoding/json"
	"net/http"

	"github.com/username/budgetfolio/backend/src/logger"
)

// SendJSONError writes an error message as a JSON body with the given status.
func SendJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logger.L.Error("Error encoding JSON error response", "error", err)
	}
}

// SendJSON writes any payload as a JSON body with the given status.
func SendJSON(w http.ResponseWriter, payload interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}
