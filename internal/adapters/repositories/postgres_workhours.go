package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet-dispatch-service/internal/domain"
)

// Postgres-backed implementation of the WorkHoursRepository port.
type PostgresWorkHoursRepository struct{ DB *sql.DB }

func NewPostgresWorkHoursRepository(db *sql.DB) *PostgresWorkHoursRepository {
	return &PostgresWorkHoursRepository{DB: db}
}

// Retrieve all work-hours ledger records.
func (r *PostgresWorkHoursRepository) LoadAll(ctx context.Context) ([]domain.WorkHoursRecord, error) {
	if r.DB == nil {
		return nil, errors.New("workhours repository: DB is nil")
	}

	query := `
	SELECT
		driver_id,
		continuous_driving_minutes,
		daily_driving_minutes,
		weekly_driving_minutes,
		daily_work_minutes,
		last_break_time,
		last_daily_rest_time,
		last_weekly_rest_time,
		compliance_violations
	FROM work_hours
	ORDER BY driver_id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load work hours: query work_hours table: %w", err)
	}
	defer rows.Close()

	recs := make([]domain.WorkHoursRecord, 0, 64)
	for rows.Next() {
		var rec domain.WorkHoursRecord
		var lastBreak, lastDaily, lastWeekly sql.NullTime
		err := rows.Scan(
			&rec.DriverID,
			&rec.CurrentContinuousDrivingMinutes,
			&rec.DailyDrivingMinutes,
			&rec.WeeklyDrivingMinutes,
			&rec.DailyWorkMinutes,
			&lastBreak,
			&lastDaily,
			&lastWeekly,
			&rec.ComplianceViolations,
		)
		if err != nil {
			return nil, fmt.Errorf("load work hours: scan row: %w", err)
		}
		rec.LastBreakTime = nullTime(lastBreak)
		rec.LastDailyRestTime = nullTime(lastDaily)
		rec.LastWeeklyRestTime = nullTime(lastWeekly)
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load work hours: row iteration: %w", err)
	}

	return recs, nil
}

// Upsert a single driver's ledger record.
func (r *PostgresWorkHoursRepository) Save(ctx context.Context, rec domain.WorkHoursRecord) error {
	if r.DB == nil {
		return errors.New("workhours repository: DB is nil")
	}
	if rec.DriverID == "" {
		return errors.New("save work hours: driver id must be non-empty")
	}

	query := `
	INSERT INTO work_hours (
		driver_id,
		continuous_driving_minutes,
		daily_driving_minutes,
		weekly_driving_minutes,
		daily_work_minutes,
		last_break_time,
		last_daily_rest_time,
		last_weekly_rest_time,
		compliance_violations
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (driver_id) DO UPDATE
	SET continuous_driving_minutes = EXCLUDED.continuous_driving_minutes,
		daily_driving_minutes = EXCLUDED.daily_driving_minutes,
		weekly_driving_minutes = EXCLUDED.weekly_driving_minutes,
		daily_work_minutes = EXCLUDED.daily_work_minutes,
		last_break_time = EXCLUDED.last_break_time,
		last_daily_rest_time = EXCLUDED.last_daily_rest_time,
		last_weekly_rest_time = EXCLUDED.last_weekly_rest_time,
		compliance_violations = EXCLUDED.compliance_violations;
	`
	_, err := r.DB.ExecContext(ctx, query,
		rec.DriverID,
		rec.CurrentContinuousDrivingMinutes,
		rec.DailyDrivingMinutes,
		rec.WeeklyDrivingMinutes,
		rec.DailyWorkMinutes,
		timeOrNull(rec.LastBreakTime),
		timeOrNull(rec.LastDailyRestTime),
		timeOrNull(rec.LastWeeklyRestTime),
		rec.ComplianceViolations,
	)
	if err != nil {
		return fmt.Errorf("save work hours driver=%s: %w", rec.DriverID, err)
	}
	return nil
}

func nullTime(t sql.NullTime) time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}

func timeOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
