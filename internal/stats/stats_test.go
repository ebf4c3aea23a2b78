package stats

import (
	"testing"
	"time"

	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)
	earlyToday := time.Date(2025, 3, 10, 0, 0, 1, 0, time.Local)

	users := []models.User{
		{ID: "1", Status: models.StatusActive, EmailVerified: true, NewsletterSubscription: true, CreatedAt: yesterday},
		{ID: "2", Status: models.StatusActive, CreatedAt: earlyToday},
		{ID: "3", Status: models.StatusSuspended, NewsletterSubscription: true, CreatedAt: now},
	}

	got := Compute(users, now)

	assert.Equal(t, 3, got.TotalUsers)
	assert.Equal(t, 2, got.ActiveUsers)
	assert.Equal(t, 1, got.VerifiedUsers)
	assert.Equal(t, 2, got.NewsletterSubscribers)
	assert.Equal(t, 2, got.RegistrationsToday)
	if assert.NotNil(t, got.LastRegistration) {
		assert.True(t, got.LastRegistration.Equal(now))
	}
	assert.True(t, got.LastUpdated.Equal(now))
}

func TestCompute_Empty(t *testing.T) {
	now := time.Now()
	got := Compute(nil, now)

	assert.Equal(t, 0, got.TotalUsers)
	assert.Nil(t, got.LastRegistration)
}

func TestDayBounds(t *testing.T) {
	now := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	start, end := DayBounds(now)

	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
