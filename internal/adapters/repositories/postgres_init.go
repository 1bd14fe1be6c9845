package repositories

import (
	"database/sql"
	"fmt"
)

// InitSchema creates the tables the service needs when they do not exist.
// Intended for local runs and the dispatchctl tool; production schemas are
// managed by migrations outside this repository.
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS work_hours (
		driver_id                  TEXT PRIMARY KEY,
		continuous_driving_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
		daily_driving_minutes      DOUBLE PRECISION NOT NULL DEFAULT 0,
		weekly_driving_minutes     DOUBLE PRECISION NOT NULL DEFAULT 0,
		daily_work_minutes         DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_break_time            TIMESTAMPTZ,
		last_daily_rest_time       TIMESTAMPTZ,
		last_weekly_rest_time      TIMESTAMPTZ,
		compliance_violations      INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: create work_hours table: %w", err)
	}
	return nil
}
