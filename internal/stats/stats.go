// Package stats derives aggregate counters from a user collection.
package stats

import (
	"time"

	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

// DayBounds returns the start of now's calendar day in now's location and the
// start of the following day.
func DayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// Compute counts users matching each predicate. It does not mutate users.
func Compute(users []models.User, now time.Time) models.StatsSnapshot {
	start, end := DayBounds(now)

	snap := models.StatsSnapshot{
		TotalUsers:  len(users),
		LastUpdated: now,
	}
	for i := range users {
		u := &users[i]
		if u.Status == models.StatusActive {
			snap.ActiveUsers++
		}
		if u.EmailVerified {
			snap.VerifiedUsers++
		}
		if u.NewsletterSubscription {
			snap.NewsletterSubscribers++
		}
		created := u.CreatedAt.In(now.Location())
		if !created.Before(start) && created.Before(end) {
			snap.RegistrationsToday++
		}
		if snap.LastRegistration == nil || u.CreatedAt.After(*snap.LastRegistration) {
			t := u.CreatedAt
			snap.LastRegistration = &t
		}
	}
	return snap
}
