package domain

import "time"

// WorkHoursRecord is the per-driver compliance ledger. One record exists per
// driver and persists across optimization runs within a shift; daily/weekly
// resets are driven by an external clock process, not by this core.
type WorkHoursRecord struct {
	DriverID                        string
	CurrentContinuousDrivingMinutes float64
	DailyDrivingMinutes             float64
	WeeklyDrivingMinutes            float64
	DailyWorkMinutes                float64
	LastBreakTime                   time.Time
	LastDailyRestTime               time.Time
	LastWeeklyRestTime              time.Time
	// ComplianceViolations only ever increases. It counts committed deltas
	// that would have failed the feasibility check (defensive/audit path).
	ComplianceViolations int
}
