package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/sbilibin2017/gw-user-registry/internal/stats"
)

// UserFileRepository keeps the whole user collection in a single JSON file.
// Every write reads the collection, mutates it in memory and rewrites the
// file. mu serialises writers so concurrent creates cannot lose updates.
type UserFileRepository struct {
	path string
	mu   sync.Mutex
}

// NewUserFileRepository creates the repository and the parent directory of path.
func NewUserFileRepository(path string) (*UserFileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return &UserFileRepository{path: path}, nil
}

// Name implements the store contract.
func (r *UserFileRepository) Name() string {
	return "file"
}

// Ping checks the collection file is readable.
func (r *UserFileRepository) Ping(ctx context.Context) error {
	_, err := r.load()
	return err
}

// All returns every stored user in file order.
func (r *UserFileRepository) All(ctx context.Context) ([]models.User, error) {
	return r.load()
}

// FindByEmail looks a user up by email, case-insensitively.
func (r *UserFileRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	if i := indexByEmail(users, email); i >= 0 {
		return &users[i], nil
	}
	return nil, models.ErrUserNotFound
}

// FindByID looks a user up by identifier.
func (r *UserFileRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, models.ErrUserNotFound
}

// Create appends the user unless its email is already present.
func (r *UserFileRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	if indexByEmail(users, user.Email) >= 0 {
		return models.ErrDuplicateEmail
	}

	users = append(users, *user)
	err = r.store(users)

	logger.Log.Infow("file store write",
		"op", "create",
		"path", r.path,
		"id", user.ID,
		"result", len(users),
		"error", err,
	)

	return err
}

// ReplaceAll overwrites the whole collection.
func (r *UserFileRepository) ReplaceAll(ctx context.Context, users []models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if users == nil {
		users = []models.User{}
	}
	err := r.store(users)

	logger.Log.Infow("file store write",
		"op", "replace_all",
		"path", r.path,
		"result", len(users),
		"error", err,
	)

	return err
}

// List returns a page of users sorted by creation time, newest first.
func (r *UserFileRepository) List(ctx context.Context, params models.ListParams) (*models.UserPage, error) {
	params = params.Normalize()

	users, err := r.load()
	if err != nil {
		return nil, err
	}

	matched := make([]models.User, 0, len(users))
	for _, u := range users {
		if params.Status == "" || u.Status == params.Status {
			matched = append(matched, u)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	from := params.Offset()
	if from < 0 || from > total {
		from = total
	}
	to := from + params.PageSize
	if to > total {
		to = total
	}

	return &models.UserPage{
		Users:      matched[from:to],
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: models.TotalPages(total, params.PageSize),
	}, nil
}

// Statistics derives the snapshot from the current collection.
func (r *UserFileRepository) Statistics(ctx context.Context, now time.Time) (*models.StatsSnapshot, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	snap := stats.Compute(users, now)
	return &snap, nil
}

// load reads the collection. A missing file is an empty collection.
func (r *UserFileRepository) load() ([]models.User, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.User{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return users, nil
}

// store writes the collection through a temp file so readers never see a
// partially written file.
func (r *UserFileRepository) store(users []models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return writeFileAtomic(r.path, data)
}

func indexByEmail(users []models.User, email string) int {
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return i
		}
	}
	return -1
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
