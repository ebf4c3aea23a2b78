package services

import (
	"context"

	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

//go:generate mockgen -source=stats.go -destination=mock_stats.go -package=services

// StatsReader reads the persisted stats snapshot.
type StatsReader interface {
	Get(ctx context.Context) (*models.StatsSnapshot, error)
}

// StatsService serves the last persisted snapshot. It never recomputes
// statistics, that only happens after a write.
type StatsService struct {
	reader StatsReader
	cache  StatsCache // optional
}

// NewStatsService creates a new StatsService.
func NewStatsService(reader StatsReader, cache StatsCache) *StatsService {
	return &StatsService{reader: reader, cache: cache}
}

// GetStats returns the cached snapshot, falling back to the persisted one.
func (s *StatsService) GetStats(ctx context.Context) (*models.StatsSnapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx)
		if err == nil {
			return snap, nil
		}
		logger.Log.Debugw("stats cache unavailable, reading snapshot file", "error", err)
	}

	snap, err := s.reader.Get(ctx)
	if err != nil {
		logger.Log.Errorw("failed to read stats", "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			logger.Log.Warnw("failed to cache stats", "error", err)
		}
	}
	return snap, nil
}
