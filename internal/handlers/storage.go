package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

//go:generate mockgen -source=storage.go -destination=mock_storage.go -package=handlers

// StorageStatuser reports store reachability.
type StorageStatuser interface {
	StorageStatus(ctx context.Context) models.StorageStatus
}

// NewStorageStatusHandler returns an HTTP handler reporting store reachability.
// @Summary Storage status
// @Description Pings the primary and secondary stores and reports the effective write mode
// @Tags storage
// @Produce json
// @Success 200 {object} models.StorageStatusResponse "Storage status"
// @Router /api/storage/status [get]
func NewStorageStatusHandler(svc StorageStatuser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.StorageStatusResponse{
			Success: true,
			Data:    svc.StorageStatus(r.Context()),
		})
	}
}

// NewHealthHandler returns a liveness probe.
// @Summary Health check
// @Tags storage
// @Produce json
// @Success 200 {object} models.HealthResponse "Alive"
// @Router /health [get]
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
	}
}
