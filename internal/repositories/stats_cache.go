package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

// ErrStatsNotCached is returned when the snapshot is absent from the cache.
var ErrStatsNotCached = errors.New("stats snapshot not found in cache")

const statsCacheKey = "user_registry:stats"

// StatsCacheRepository caches the last StatsSnapshot in Redis.
type StatsCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration of the cached snapshot
}

// NewStatsCacheRepository creates a new repository instance with the given TTL.
func NewStatsCacheRepository(client *redis.Client, expiration time.Duration) *StatsCacheRepository {
	return &StatsCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// Get fetches the cached snapshot.
func (r *StatsCacheRepository) Get(ctx context.Context) (*models.StatsSnapshot, error) {
	val, err := r.client.Get(ctx, statsCacheKey).Result()
	if err != nil {
		logger.Log.Debugw("stats cache miss",
			"key", statsCacheKey,
			"error", err,
		)
		if errors.Is(err, redis.Nil) {
			return nil, ErrStatsNotCached
		}
		return nil, err
	}

	var snap models.StatsSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("decode cached stats: %w", err)
	}
	return &snap, nil
}

// Set caches the snapshot with the repository TTL.
func (r *StatsCacheRepository) Set(ctx context.Context, snap *models.StatsSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	err = r.client.Set(ctx, statsCacheKey, data, r.exp).Err()

	logger.Log.Debugw("stats cache set",
		"key", statsCacheKey,
		"ttl", r.exp,
		"error", err,
	)

	return err
}
