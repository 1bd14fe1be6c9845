// Package db opens the Postgres connection backing the work-hours ledger.
package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open connects to Postgres and verifies the connection. The ledger workload
// is small single-row upserts around optimization runs, so the pool stays
// deliberately small.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}
