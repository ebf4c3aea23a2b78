package services_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/sbilibin2017/gw-user-registry/internal/repositories"
	"github.com/sbilibin2017/gw-user-registry/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTarget is an in-memory secondary store keyed by email.
type memTarget struct {
	mu     sync.Mutex
	users  []models.User
	nextID int
	failOn string
}

func (m *memTarget) Name() string { return "mem" }

func (m *memTarget) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *memTarget) Insert(_ context.Context, user models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.Email == m.failOn {
		return nil, errors.New("document too large")
	}
	m.nextID++
	user.ID = fmt.Sprintf("obj-%d", m.nextID)
	m.users = append(m.users, user)
	return &user, nil
}

func (m *memTarget) All(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.User(nil), m.users...), nil
}

func connectTo(target services.MigrationTarget, closed *int) services.SecondaryConnector {
	return func(context.Context) (services.MigrationTarget, func(context.Context) error, error) {
		return target, func(context.Context) error {
			*closed++
			return nil
		}, nil
	}
}

func newFileStores(t *testing.T) (*repositories.UserFileRepository, *repositories.StatsFileRepository) {
	t.Helper()
	dir := t.TempDir()

	users, err := repositories.NewUserFileRepository(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	stats, err := repositories.NewStatsFileRepository(filepath.Join(dir, "stats.json"))
	require.NoError(t, err)
	return users, stats
}

func seedUser(t *testing.T, store *repositories.UserFileRepository, id, email string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.Create(context.Background(), &models.User{
		ID:        id,
		Name:      id,
		Email:     email,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestMigrationService_ToSecondary_Idempotent(t *testing.T) {
	ctx := context.Background()
	users, stats := newFileStores(t)
	seedUser(t, users, "a", "a@x.com")
	seedUser(t, users, "b", "b@x.com")
	seedUser(t, users, "c", "c@x.com")

	target := &memTarget{}
	closed := 0
	svc := services.NewMigrationService(users, stats, nil, connectTo(target, &closed), time.Second)

	first, err := svc.Run(ctx, models.DirectionToSecondary)
	require.NoError(t, err)
	assert.Equal(t, models.MigrationSummary{
		Direction: models.DirectionToSecondary,
		Migrated:  3,
		Total:     3,
	}, *first)

	second, err := svc.Run(ctx, models.DirectionToSecondary)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Migrated)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 3, second.Total)

	all, _ := target.All(ctx)
	require.Len(t, all, 3)
	for _, u := range all {
		assert.True(t, strings.HasPrefix(u.ID, "obj-"), "secondary assigns its own id")
	}
	assert.Equal(t, 2, closed)
	assert.Equal(t, services.StateIdle, svc.State())
}

func TestMigrationService_ToSecondary_PerRecordErrors(t *testing.T) {
	ctx := context.Background()
	users, stats := newFileStores(t)
	seedUser(t, users, "a", "a@x.com")
	seedUser(t, users, "b", "b@x.com")

	target := &memTarget{failOn: "a@x.com"}
	closed := 0
	svc := services.NewMigrationService(users, stats, nil, connectTo(target, &closed), time.Second)

	summary, err := svc.ToSecondary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errored)
	assert.Equal(t, 1, summary.Migrated)
	assert.Equal(t, 2, summary.Total)
}

func TestMigrationService_ToSecondary_DuplicateOnInsertIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	file := services.NewMockUserCollection(ctrl)
	target := services.NewMockMigrationTarget(ctrl)
	stats := services.NewMockStatsWriter(ctrl)

	file.EXPECT().All(gomock.Any()).Return([]models.User{{ID: "a", Email: "a@x.com"}}, nil)
	target.EXPECT().Name().Return("mongo").AnyTimes()
	target.EXPECT().FindByEmail(gomock.Any(), "a@x.com").Return(nil, models.ErrUserNotFound)
	target.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil, models.ErrDuplicateEmail)

	connect := func(context.Context) (services.MigrationTarget, func(context.Context) error, error) {
		return target, nil, nil
	}

	svc := services.NewMigrationService(file, stats, nil, connect, time.Second)
	summary, err := svc.ToSecondary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Errored)
}

func TestMigrationService_ToFile_Overwrites(t *testing.T) {
	ctx := context.Background()
	users, stats := newFileStores(t)
	seedUser(t, users, "a", "a@x.com")
	seedUser(t, users, "c", "c@x.com")

	now := time.Now()
	target := &memTarget{users: []models.User{
		{ID: "a", Email: "a@x.com", Status: models.StatusActive, CreatedAt: now},
		{ID: "b", Email: "b@x.com", Status: models.StatusActive, CreatedAt: now, NewsletterSubscription: true},
	}}
	closed := 0
	svc := services.NewMigrationService(users, stats, nil, connectTo(target, &closed), time.Second)

	summary, err := svc.Run(ctx, models.DirectionToFile)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Migrated)
	assert.Equal(t, 2, summary.Total)

	all, err := users.All(ctx)
	require.NoError(t, err)
	emails := make([]string, 0, len(all))
	for _, u := range all {
		emails = append(emails, u.Email)
	}
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com"}, emails)

	_, err = users.FindByEmail(ctx, "c@x.com")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	snap, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalUsers)
	assert.Equal(t, 1, snap.NewsletterSubscribers)
	assert.Equal(t, 1, closed)
}

func TestMigrationService_ToFile_RefreshesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	users, stats := newFileStores(t)
	seedUser(t, users, "old", "old@x.com")

	target := &memTarget{users: []models.User{
		{ID: "a", Email: "a@x.com", Status: models.StatusActive, CreatedAt: time.Now()},
		{ID: "b", Email: "b@x.com", Status: models.StatusPending, CreatedAt: time.Now()},
	}}

	cache := services.NewMockStatsCache(ctrl)
	cache.EXPECT().
		Set(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap *models.StatsSnapshot) error {
			assert.Equal(t, 2, snap.TotalUsers)
			assert.Equal(t, 1, snap.ActiveUsers)
			return errors.New("redis down")
		})

	closed := 0
	svc := services.NewMigrationService(users, stats, cache, connectTo(target, &closed), time.Second)

	// a cache failure does not fail the run
	summary, err := svc.Run(ctx, models.DirectionToFile)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)

	snap, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalUsers)
}

func TestMigrationService_ConnectFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No call on the file store is expected.
	file := services.NewMockUserCollection(ctrl)
	stats := services.NewMockStatsWriter(ctrl)

	connect := func(ctx context.Context) (services.MigrationTarget, func(context.Context) error, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	svc := services.NewMigrationService(file, stats, nil, connect, 20*time.Millisecond)

	for _, direction := range []string{models.DirectionToSecondary, models.DirectionToFile} {
		t.Run(direction, func(t *testing.T) {
			summary, err := svc.Run(context.Background(), direction)

			assert.ErrorIs(t, err, services.ErrMigrationConnect)
			assert.Nil(t, summary)
			assert.Equal(t, services.StateIdle, svc.State())
		})
	}

	assert.Equal(t, []services.MigrationState{
		services.StateConnecting, services.StateAborted, services.StateIdle,
		services.StateConnecting, services.StateAborted, services.StateIdle,
	}, svc.History())
}

func TestMigrationService_StateHistory(t *testing.T) {
	users, stats := newFileStores(t)
	closed := 0
	svc := services.NewMigrationService(users, stats, nil, connectTo(&memTarget{}, &closed), time.Second)

	_, err := svc.ToSecondary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []services.MigrationState{
		services.StateConnecting,
		services.StateConnected,
		services.StateProcessing,
		services.StateSummarized,
		services.StateIdle,
	}, svc.History())
}

func TestMigrationService_UnknownDirection(t *testing.T) {
	svc := services.NewMigrationService(nil, nil, nil, nil, time.Second)

	_, err := svc.Run(context.Background(), "sideways")
	assert.ErrorIs(t, err, services.ErrUnknownDirection)
	assert.Empty(t, svc.History())
}
