package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

// StatsFileRepository persists the single StatsSnapshot as a JSON file.
type StatsFileRepository struct {
	path string
}

// NewStatsFileRepository creates the repository and the parent directory of path.
func NewStatsFileRepository(path string) (*StatsFileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return &StatsFileRepository{path: path}, nil
}

// Save overwrites the snapshot.
func (r *StatsFileRepository) Save(ctx context.Context, snap *models.StatsSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	err = writeFileAtomic(r.path, data)

	logger.Log.Infow("stats snapshot saved",
		"path", r.path,
		"total_users", snap.TotalUsers,
		"error", err,
	)

	return err
}

// Get returns the last saved snapshot, or an empty one if none was saved yet.
func (r *StatsFileRepository) Get(ctx context.Context) (*models.StatsSnapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &models.StatsSnapshot{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	var snap models.StatsSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return &snap, nil
}
