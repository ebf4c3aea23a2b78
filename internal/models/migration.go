package models

// Migration directions.
const (
	DirectionToSecondary = "to-secondary"
	DirectionToFile      = "to-file"
)

// MigrationSummary counts the outcome of one migration run.
type MigrationSummary struct {
	Direction string `json:"direction"`
	Migrated  int    `json:"migrated"`
	Skipped   int    `json:"skipped"`
	Errored   int    `json:"errored"`
	Total     int    `json:"total"`
}

// RegistrationEvent is published after a user is created.
type RegistrationEvent struct {
	EventID   string `json:"event_id"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp"`
	Mode      string `json:"mode"`
}
