package repositories

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// OpenPostgres creates a connection pool for the pgx driver without
// contacting the server. The caller must import the pgx stdlib driver.
func OpenPostgres(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, nil
}
