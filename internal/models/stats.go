package models

import "time"

// StatsSnapshot holds aggregate counters derived from the user collection.
// swagger:model StatsSnapshot
type StatsSnapshot struct {
	TotalUsers            int        `json:"totalUsers"`
	ActiveUsers           int        `json:"activeUsers"`
	VerifiedUsers         int        `json:"verifiedUsers"`
	NewsletterSubscribers int        `json:"newsletterSubscribers"`
	RegistrationsToday    int        `json:"registrationsToday"`
	LastRegistration      *time.Time `json:"lastRegistration"`
	LastUpdated           time.Time  `json:"lastUpdated"`
}
