package workhours

import "time"

// DriverCompliance is one driver's ledger annotated with the derived flags.
type DriverCompliance struct {
	DriverID                        string    `json:"driver_id"`
	CurrentContinuousDrivingMinutes float64   `json:"current_continuous_driving_minutes"`
	DailyDrivingMinutes             float64   `json:"daily_driving_minutes"`
	WeeklyDrivingMinutes            float64   `json:"weekly_driving_minutes"`
	DailyWorkMinutes                float64   `json:"daily_work_minutes"`
	LastBreakTime                   time.Time `json:"last_break_time,omitzero"`
	NeedsBreak                      bool      `json:"needs_break"`
	NeedsDailyRest                  bool      `json:"needs_daily_rest"`
	NeedsWeeklyRest                 bool      `json:"needs_weekly_rest"`
	ComplianceViolations            int       `json:"compliance_violations"`
}

// Reporter aggregates fleet-wide compliance state. It is pure read-side:
// no mutation, safe to call at any time, including mid-run.
type Reporter struct {
	tracker *Tracker
}

func NewReporter(tracker *Tracker) *Reporter {
	return &Reporter{tracker: tracker}
}

// Report returns the annotated ledger for every known driver, ordered by id.
func (r *Reporter) Report(now time.Time) []DriverCompliance {
	recs := r.tracker.Snapshot()
	out := make([]DriverCompliance, 0, len(recs))
	for _, rec := range recs {
		out = append(out, DriverCompliance{
			DriverID:                        rec.DriverID,
			CurrentContinuousDrivingMinutes: rec.CurrentContinuousDrivingMinutes,
			DailyDrivingMinutes:             rec.DailyDrivingMinutes,
			WeeklyDrivingMinutes:            rec.WeeklyDrivingMinutes,
			DailyWorkMinutes:                rec.DailyWorkMinutes,
			LastBreakTime:                   rec.LastBreakTime,
			NeedsBreak:                      r.tracker.NeedsBreak(rec.DriverID),
			NeedsDailyRest:                  r.tracker.NeedsDailyRest(rec.DriverID, now),
			NeedsWeeklyRest:                 r.tracker.NeedsWeeklyRest(rec.DriverID),
			ComplianceViolations:            rec.ComplianceViolations,
		})
	}
	return out
}

// DriversNeedingBreak lists drivers at or past the continuous-driving cap.
func (r *Reporter) DriversNeedingBreak() []string {
	var out []string
	for _, rec := range r.tracker.Snapshot() {
		if r.tracker.NeedsBreak(rec.DriverID) {
			out = append(out, rec.DriverID)
		}
	}
	return out
}

// DriversNeedingRest lists drivers due a daily or weekly rest.
func (r *Reporter) DriversNeedingRest(now time.Time) []string {
	var out []string
	for _, rec := range r.tracker.Snapshot() {
		if r.tracker.NeedsDailyRest(rec.DriverID, now) || r.tracker.NeedsWeeklyRest(rec.DriverID) {
			out = append(out, rec.DriverID)
		}
	}
	return out
}

// TotalViolations sums the violation counters across the fleet.
func (r *Reporter) TotalViolations() int {
	total := 0
	for _, rec := range r.tracker.Snapshot() {
		total += rec.ComplianceViolations
	}
	return total
}
