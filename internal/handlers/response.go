package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warnw("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, models.ErrorResponse{Success: false, Error: msg})
}
