package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/segmentio/kafka-go"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=user.go -destination=mock_user.go -package=services

// Error variables
var (
	// ErrEmailAlreadyExists signals a conflict on the primary store.
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	// ErrInvalidRegistration is returned for payloads the service cannot normalize.
	ErrInvalidRegistration = errors.New("invalid registration payload")
)

// UserStore is the capability set shared by every store back-end.
type UserStore interface {
	// Name is the short store name, e.g. file.
	Name() string
	Ping(ctx context.Context) error
	// FindByEmail returns models.ErrUserNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByID returns models.ErrUserNotFound when absent.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// Create returns models.ErrDuplicateEmail on conflict.
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, params models.ListParams) (*models.UserPage, error)
	Statistics(ctx context.Context, now time.Time) (*models.StatsSnapshot, error)
	All(ctx context.Context) ([]models.User, error)
}

// StatsWriter persists the stats snapshot.
type StatsWriter interface {
	Save(ctx context.Context, snap *models.StatsSnapshot) error
}

// StatsCache caches the stats snapshot.
type StatsCache interface {
	Get(ctx context.Context) (*models.StatsSnapshot, error)
	Set(ctx context.Context, snap *models.StatsSnapshot) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// WriteResult is the outcome of the best-effort secondary write.
type WriteResult struct {
	Store   string
	Skipped bool // no secondary configured or it was unreachable
	Err     error
}

// OK reports whether the record reached the secondary store.
func (r WriteResult) OK() bool {
	return !r.Skipped && r.Err == nil
}

// UserService writes new users to the primary store and mirrors them to the
// secondary store. The primary write is required, the secondary one is
// best-effort and never fails the call.
type UserService struct {
	primary     UserStore
	secondary   UserStore // nil when no secondary is configured
	stats       StatsWriter
	cache       StatsCache  // optional
	kafkaWriter KafkaWriter // optional

	bcryptCost  int
	pingTimeout time.Duration
	now         func() time.Time

	// secondaryAvailable is set by CheckSecondary at start-up and refreshed
	// before every secondary write.
	secondaryAvailable atomic.Bool
}

// NewUserService creates a new UserService.
func NewUserService(
	primary UserStore,
	secondary UserStore,
	stats StatsWriter,
	cache StatsCache,
	kafkaWriter KafkaWriter,
	bcryptCost int,
	pingTimeout time.Duration,
) *UserService {
	return &UserService{
		primary:     primary,
		secondary:   secondary,
		stats:       stats,
		cache:       cache,
		kafkaWriter: kafkaWriter,
		bcryptCost:  bcryptCost,
		pingTimeout: pingTimeout,
		now:         time.Now,
	}
}

// CheckSecondary pings the secondary store and records whether it is reachable.
func (s *UserService) CheckSecondary(ctx context.Context) bool {
	if s.secondary == nil {
		s.secondaryAvailable.Store(false)
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()

	err := s.secondary.Ping(pingCtx)
	available := err == nil
	if was := s.secondaryAvailable.Swap(available); was != available {
		logger.Log.Infow("secondary store availability changed",
			"store", s.secondary.Name(),
			"available", available,
			"error", err,
		)
	}
	return available
}

// CreateUser registers a new user and returns it without its password hash,
// together with the storage status of the write.
func (s *UserService) CreateUser(ctx context.Context, reg models.Registration) (*models.User, models.StorageStatus, error) {
	email := normalizeEmail(reg.Email)

	// Fast path. The store's own uniqueness check below stays authoritative.
	_, err := s.primary.FindByEmail(ctx, email)
	switch {
	case err == nil:
		logger.Log.Infow("user already exists", "email", email)
		return nil, models.StorageStatus{}, ErrEmailAlreadyExists
	case !errors.Is(err, models.ErrUserNotFound):
		logger.Log.Errorw("failed to check user exists", "store", s.primary.Name(), "err", err)
		return nil, models.StorageStatus{}, fmt.Errorf("primary store %s: %w", s.primary.Name(), err)
	}

	id := uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		// bcrypt limits the input in bytes, so multi-byte passwords can pass
		// the character-count validation and still be too long
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, models.StorageStatus{}, fmt.Errorf("%w: password exceeds 72 bytes", ErrInvalidRegistration)
		}
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, models.StorageStatus{}, err
	}

	user, err := buildUser(id, email, string(hash), reg, s.now())
	if err != nil {
		return nil, models.StorageStatus{}, err
	}

	if err := s.primary.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			logger.Log.Infow("user already exists", "email", email)
			return nil, models.StorageStatus{}, ErrEmailAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "store", s.primary.Name(), "id", id, "err", err)
		return nil, models.StorageStatus{}, fmt.Errorf("primary store %s: %w", s.primary.Name(), err)
	}

	result := s.writeSecondary(ctx, user)
	status := s.status(true, result.OK())

	s.refreshStats(ctx)
	s.publishRegistration(ctx, user, status.Mode)

	out := user.WithoutPassword()
	return &out, status, nil
}

// writeSecondary mirrors the user to the secondary store. Failures are
// logged and returned as a value, never as an error.
func (s *UserService) writeSecondary(ctx context.Context, user *models.User) WriteResult {
	if s.secondary == nil {
		return WriteResult{Skipped: true}
	}

	result := WriteResult{Store: s.secondary.Name()}
	if !s.CheckSecondary(ctx) {
		result.Skipped = true
		logger.Log.Warnw("secondary store unavailable, user saved to primary only",
			"store", result.Store,
			"id", user.ID,
		)
		return result
	}

	mirror := *user
	result.Err = s.secondary.Create(ctx, &mirror)
	if result.Err != nil {
		logger.Log.Warnw("failed to mirror user to secondary store",
			"store", result.Store,
			"id", user.ID,
			"error", result.Err,
		)
		return result
	}

	logger.Log.Infow("user mirrored to secondary store", "store", result.Store, "id", user.ID)
	return result
}

// refreshStats recomputes the snapshot from the primary store. A failure
// leaves the previous snapshot in place until the next successful write.
func (s *UserService) refreshStats(ctx context.Context) {
	snap, err := s.primary.Statistics(ctx, s.now())
	if err != nil {
		logger.Log.Errorw("failed to compute stats", "store", s.primary.Name(), "error", err)
		return
	}

	if err := s.stats.Save(ctx, snap); err != nil {
		logger.Log.Errorw("failed to save stats", "error", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			logger.Log.Warnw("failed to cache stats", "error", err)
		}
	}
}

// publishRegistration publishes the registration event to Kafka.
func (s *UserService) publishRegistration(ctx context.Context, user *models.User, mode string) {
	if s.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "user_id", user.ID)
		return
	}

	event := models.RegistrationEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Timestamp: user.CreatedAt.Unix(),
		Mode:      mode,
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal registration event", "user_id", user.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(user.ID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish registration event", "user_id", user.ID, "error", err)
	} else {
		logger.Log.Infow("Registration event published", "user_id", user.ID)
	}
}

// GetUser returns a user from the primary store without its password hash.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.primary.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			logger.Log.Errorw("failed to get user", "id", id, "err", err)
		}
		return nil, err
	}
	out := user.WithoutPassword()
	return &out, nil
}

// ListUsers returns a page of users from the primary store without password hashes.
func (s *UserService) ListUsers(ctx context.Context, params models.ListParams) (*models.UserPage, error) {
	page, err := s.primary.List(ctx, params)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	for i := range page.Users {
		page.Users[i] = page.Users[i].WithoutPassword()
	}
	return page, nil
}

// StorageStatus reports the reachability of both stores.
func (s *UserService) StorageStatus(ctx context.Context) models.StorageStatus {
	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()

	primaryOK := s.primary.Ping(pingCtx) == nil
	return s.status(primaryOK, s.CheckSecondary(ctx))
}

func (s *UserService) status(primaryOK, secondaryOK bool) models.StorageStatus {
	st := models.StorageStatus{
		Primary:          s.primary.Name(),
		PrimaryAvailable: primaryOK,
		Mode:             models.SingleMode(s.primary.Name()),
	}
	if s.secondary != nil {
		st.Secondary = s.secondary.Name()
		st.SecondaryAvailable = secondaryOK
		if primaryOK && secondaryOK {
			st.Mode = models.ModeDual
		}
	}
	return st
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// optional maps blank strings to nil.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func buildUser(id, email, hash string, reg models.Registration, now time.Time) (*models.User, error) {
	user := &models.User{
		ID:                     id,
		Name:                   strings.TrimSpace(reg.Name),
		Email:                  email,
		Password:               hash,
		Phone:                  strings.TrimSpace(reg.Phone),
		Gender:                 optional(reg.Gender),
		Address:                optional(reg.Address),
		City:                   optional(reg.City),
		State:                  optional(reg.State),
		ZipCode:                optional(reg.ZipCode),
		Country:                optional(reg.Country),
		Occupation:             optional(reg.Occupation),
		Company:                optional(reg.Company),
		Website:                optional(reg.Website),
		EmergencyContactName:   optional(reg.EmergencyContactName),
		EmergencyContactPhone:  optional(reg.EmergencyContactPhone),
		ProfilePhoto:           reg.Photo,
		NewsletterSubscription: reg.NewsletterSubscription,
		TermsAccepted:          reg.TermsAccepted,
		Status:                 models.StatusActive,
		EmailVerified:          false,
		CreatedAt:              now,
		UpdatedAt:              now,
		LoginCount:             0,
	}

	if dob := optional(reg.DateOfBirth); dob != nil {
		t, err := time.Parse(time.DateOnly, *dob)
		if err != nil {
			return nil, fmt.Errorf("%w: date of birth %q", ErrInvalidRegistration, *dob)
		}
		user.DateOfBirth = &t
	}

	return user, nil
}
