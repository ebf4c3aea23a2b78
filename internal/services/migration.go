package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

//go:generate mockgen -source=migration.go -destination=mock_migration.go -package=services

// ErrMigrationConnect is returned when the secondary store cannot be reached
// at the start of a run. No record is touched in that case.
var ErrMigrationConnect = errors.New("migration: secondary store unreachable")

// ErrUnknownDirection is returned by Run for an unsupported direction.
var ErrUnknownDirection = errors.New("migration: unknown direction")

// MigrationState is a step of a migration run.
type MigrationState string

// Migration states.
const (
	StateIdle       MigrationState = "idle"
	StateConnecting MigrationState = "connecting"
	StateConnected  MigrationState = "connected"
	StateAborted    MigrationState = "aborted"
	StateProcessing MigrationState = "processing"
	StateSummarized MigrationState = "summarized"
)

// MigrationTarget is the secondary store as seen by a migration run.
type MigrationTarget interface {
	Name() string
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Insert stores a copy of the user under an identifier assigned by the store.
	Insert(ctx context.Context, user models.User) (*models.User, error)
	All(ctx context.Context) ([]models.User, error)
}

// UserCollection is the file store as seen by a migration run.
type UserCollection interface {
	All(ctx context.Context) ([]models.User, error)
	ReplaceAll(ctx context.Context, users []models.User) error
	Statistics(ctx context.Context, now time.Time) (*models.StatsSnapshot, error)
}

// SecondaryConnector opens a connection to the secondary store. The returned
// close function releases it.
type SecondaryConnector func(ctx context.Context) (MigrationTarget, func(context.Context) error, error)

// MigrationService reconciles the file store and the secondary store with an
// explicit one-way sync.
type MigrationService struct {
	file           UserCollection
	stats          StatsWriter
	cache          StatsCache // nil when Redis is not configured
	connect        SecondaryConnector
	connectTimeout time.Duration
	now            func() time.Time

	mu      sync.Mutex
	state   MigrationState
	history []MigrationState
}

// NewMigrationService creates a new MigrationService. cache may be nil.
func NewMigrationService(
	file UserCollection,
	stats StatsWriter,
	cache StatsCache,
	connect SecondaryConnector,
	connectTimeout time.Duration,
) *MigrationService {
	return &MigrationService{
		file:           file,
		stats:          stats,
		cache:          cache,
		connect:        connect,
		connectTimeout: connectTimeout,
		now:            time.Now,
		state:          StateIdle,
	}
}

// State returns the current state.
func (s *MigrationService) State() MigrationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns every state entered since the service was created.
func (s *MigrationService) History() []MigrationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MigrationState(nil), s.history...)
}

func (s *MigrationService) transition(to MigrationState) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.history = append(s.history, to)
	s.mu.Unlock()

	logger.Log.Debugw("migration state", "from", from, "to", to)
}

// Run executes a migration in the given direction.
func (s *MigrationService) Run(ctx context.Context, direction string) (*models.MigrationSummary, error) {
	switch direction {
	case models.DirectionToSecondary:
		return s.ToSecondary(ctx)
	case models.DirectionToFile:
		return s.ToFile(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}
}

// ToSecondary copies every file record whose email is not yet present in the
// secondary store. Records already there are skipped, so a second run
// migrates nothing.
func (s *MigrationService) ToSecondary(ctx context.Context) (*models.MigrationSummary, error) {
	target, closeFn, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close(ctx, closeFn)

	s.transition(StateProcessing)

	users, err := s.file.All(ctx)
	if err != nil {
		s.transition(StateAborted)
		s.transition(StateIdle)
		return nil, fmt.Errorf("load file store: %w", err)
	}

	summary := &models.MigrationSummary{Direction: models.DirectionToSecondary}
	for _, user := range users {
		summary.Total++

		switch s.migrateOne(ctx, target, user) {
		case outcomeSkipped:
			summary.Skipped++
		case outcomeMigrated:
			summary.Migrated++
		default:
			summary.Errored++
		}
	}

	s.summarize(summary)
	return summary, nil
}

type outcome int

const (
	outcomeErrored outcome = iota
	outcomeSkipped
	outcomeMigrated
)

func (s *MigrationService) migrateOne(ctx context.Context, target MigrationTarget, user models.User) outcome {
	_, err := target.FindByEmail(ctx, user.Email)
	switch {
	case err == nil:
		logger.Log.Infow("user already in secondary store, skipping", "email", user.Email)
		return outcomeSkipped
	case !errors.Is(err, models.ErrUserNotFound):
		logger.Log.Errorw("failed to look user up", "email", user.Email, "error", err)
		return outcomeErrored
	}

	inserted, err := target.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			logger.Log.Infow("user already in secondary store, skipping", "email", user.Email)
			return outcomeSkipped
		}
		logger.Log.Errorw("failed to migrate user", "email", user.Email, "error", err)
		return outcomeErrored
	}

	logger.Log.Infow("user migrated", "email", user.Email, "file_id", user.ID, "id", inserted.ID)
	return outcomeMigrated
}

// ToFile overwrites the file store with the full secondary collection. File
// records missing from the secondary store are lost.
func (s *MigrationService) ToFile(ctx context.Context) (*models.MigrationSummary, error) {
	target, closeFn, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close(ctx, closeFn)

	s.transition(StateProcessing)

	users, err := target.All(ctx)
	if err == nil {
		err = s.file.ReplaceAll(ctx, users)
	}
	if err != nil {
		logger.Log.Errorw("failed to overwrite file store", "error", err)
		s.transition(StateAborted)
		s.transition(StateIdle)
		return nil, fmt.Errorf("overwrite file store: %w", err)
	}

	s.refreshStats(ctx)

	summary := &models.MigrationSummary{
		Direction: models.DirectionToFile,
		Migrated:  len(users),
		Total:     len(users),
	}
	s.summarize(summary)
	return summary, nil
}

// refreshStats recomputes the snapshot of the rewritten file and replaces the
// cached copy, so readers do not see pre-migration counters.
func (s *MigrationService) refreshStats(ctx context.Context) {
	snap, err := s.file.Statistics(ctx, s.now())
	if err == nil {
		err = s.stats.Save(ctx, snap)
	}
	if err != nil {
		logger.Log.Errorw("failed to refresh stats after migration", "error", err)
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			logger.Log.Warnw("failed to cache stats after migration", "error", err)
		}
	}
}

// open connects to the secondary store, bounded by the connect timeout.
func (s *MigrationService) open(ctx context.Context) (MigrationTarget, func(context.Context) error, error) {
	s.transition(StateConnecting)

	connectCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	target, closeFn, err := s.connect(connectCtx)
	if err != nil {
		logger.Log.Errorw("failed to connect to secondary store", "error", err)
		s.transition(StateAborted)
		s.transition(StateIdle)
		return nil, nil, fmt.Errorf("%w: %v", ErrMigrationConnect, err)
	}

	s.transition(StateConnected)
	logger.Log.Infow("connected to secondary store", "store", target.Name())
	return target, closeFn, nil
}

func (s *MigrationService) close(ctx context.Context, closeFn func(context.Context) error) {
	if closeFn == nil {
		return
	}
	if err := closeFn(ctx); err != nil {
		logger.Log.Warnw("failed to close secondary store connection", "error", err)
	}
}

func (s *MigrationService) summarize(summary *models.MigrationSummary) {
	s.transition(StateSummarized)
	logger.Log.Infow("migration finished",
		"direction", summary.Direction,
		"migrated", summary.Migrated,
		"skipped", summary.Skipped,
		"errored", summary.Errored,
		"total", summary.Total,
	)
	s.transition(StateIdle)
}
