package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

//go:generate mockgen -source=stats.go -destination=mock_stats.go -package=handlers

// StatsGetter defines the interface that the service must implement.
type StatsGetter interface {
	GetStats(ctx context.Context) (*models.StatsSnapshot, error)
}

// NewGetStatsHandler returns an HTTP handler serving the last stats snapshot.
// @Summary Registration statistics
// @Description Returns the snapshot recomputed after the last successful registration
// @Tags users
// @Produce json
// @Success 200 {object} models.StatsResponse "Statistics"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/users/stats [get]
func NewGetStatsHandler(svc StatsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.GetStats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to retrieve statistics")
			return
		}
		writeJSON(w, http.StatusOK, models.StatsResponse{Success: true, Data: *snap})
	}
}
