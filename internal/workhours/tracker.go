// Package workhours enforces driving-hours compliance analogous to
// commercial-driving regulations: continuous-driving cap, daily driving cap,
// daily duty cap, weekly driving cap, and mandatory break/rest intervals.
package workhours

import (
	"sort"
	"sync"
	"time"

	"fleet-dispatch-service/internal/domain"
)

// Limits holds the compliance thresholds, all in minutes unless noted.
// Defaults are configurable, not hard-coded law.
type Limits struct {
	ContinuousDrivingCap float64
	DailyDrivingCap      float64
	WeeklyDrivingCap     float64
	DailyDutyCap         float64
	DailyRestInterval    time.Duration
}

// DefaultLimits returns the standard thresholds: 4h continuous driving before
// a mandatory break, 12h daily driving, 72h weekly driving, 12h daily duty,
// daily rest due 24h after the last one.
func DefaultLimits() Limits {
	return Limits{
		ContinuousDrivingCap: 240,
		DailyDrivingCap:      720,
		WeeklyDrivingCap:     4320,
		DailyDutyCap:         720,
		DailyRestInterval:    24 * time.Hour,
	}
}

// entry is one driver's ledger plus its own lock. Entries are independently
// lockable: commits are per-driver, so no cross-driver lock ordering exists.
type entry struct {
	mu  sync.Mutex
	rec domain.WorkHoursRecord
}

// Tracker is the per-driver work-hours ledger. It is safe for concurrent use.
// Records are created when a driver first appears and persist across
// optimization runs within a shift; daily/weekly resets are owned by an
// external clock-driven process that rewrites the ledger through Seed.
type Tracker struct {
	limits Limits

	mu      sync.RWMutex
	entries map[string]*entry
}

func NewTracker(limits Limits) *Tracker {
	return &Tracker{
		limits:  limits,
		entries: make(map[string]*entry),
	}
}

// Limits returns the thresholds the tracker enforces.
func (t *Tracker) Limits() Limits { return t.limits }

// Seed replaces the ledger entries for the given records, e.g. when hydrating
// from persistent storage at startup or after an external reset.
func (t *Tracker) Seed(recs []domain.WorkHoursRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range recs {
		t.entries[rec.DriverID] = &entry{rec: rec}
	}
}

func (t *Tracker) ensure(driverID string) *entry {
	t.mu.RLock()
	e, ok := t.entries[driverID]
	t.mu.RUnlock()
	if ok {
		return e
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[driverID]; ok {
		return e
	}
	e = &entry{rec: domain.WorkHoursRecord{DriverID: driverID}}
	t.entries[driverID] = e
	return e
}

func (t *Tracker) wouldExceed(rec domain.WorkHoursRecord, driveMinutes, workMinutes float64) bool {
	switch {
	case rec.CurrentContinuousDrivingMinutes+driveMinutes > t.limits.ContinuousDrivingCap:
		return true
	case rec.DailyDrivingMinutes+driveMinutes > t.limits.DailyDrivingCap:
		return true
	case rec.WeeklyDrivingMinutes+driveMinutes > t.limits.WeeklyDrivingCap:
		return true
	case rec.DailyWorkMinutes+workMinutes > t.limits.DailyDutyCap:
		return true
	}
	return false
}

// CanExtend reports whether committing the additional driving and duty time
// would keep the driver inside every cap. A false result makes the pairing
// infeasible for this run; it is the expected, common case during route
// construction and is never an error.
func (t *Tracker) CanExtend(driverID string, driveMinutes, workMinutes float64) bool {
	e := t.ensure(driverID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return !t.wouldExceed(e.rec, driveMinutes, workMinutes)
}

// Commit mutates the ledger with a completed driving/duty segment.
// Committing a delta that would have failed CanExtend still applies but
// increments the violation counter; that path should not occur through the
// assignment engine and exists for audit.
func (t *Tracker) Commit(driverID string, driveMinutes, workMinutes float64, at time.Time) {
	e := t.ensure(driverID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if t.wouldExceed(e.rec, driveMinutes, workMinutes) {
		e.rec.ComplianceViolations++
	}
	e.rec.CurrentContinuousDrivingMinutes += driveMinutes
	e.rec.DailyDrivingMinutes += driveMinutes
	e.rec.WeeklyDrivingMinutes += driveMinutes
	e.rec.DailyWorkMinutes += workMinutes
}

// RecordBreak records a completed break, resetting continuous driving time.
func (t *Tracker) RecordBreak(driverID string, at time.Time) {
	e := t.ensure(driverID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.CurrentContinuousDrivingMinutes = 0
	e.rec.LastBreakTime = at
}

// NeedsBreak reports whether the driver has hit the continuous-driving cap.
func (t *Tracker) NeedsBreak(driverID string) bool {
	rec, ok := t.Status(driverID)
	if !ok {
		return false
	}
	return rec.CurrentContinuousDrivingMinutes >= t.limits.ContinuousDrivingCap
}

// NeedsDailyRest reports whether the driver has hit the daily driving cap or
// has gone longer than the rest interval since the last daily rest.
func (t *Tracker) NeedsDailyRest(driverID string, now time.Time) bool {
	rec, ok := t.Status(driverID)
	if !ok {
		return false
	}
	if rec.DailyDrivingMinutes >= t.limits.DailyDrivingCap {
		return true
	}
	return !rec.LastDailyRestTime.IsZero() && now.Sub(rec.LastDailyRestTime) > t.limits.DailyRestInterval
}

// NeedsWeeklyRest reports whether the driver has hit the weekly driving cap.
func (t *Tracker) NeedsWeeklyRest(driverID string) bool {
	rec, ok := t.Status(driverID)
	if !ok {
		return false
	}
	return rec.WeeklyDrivingMinutes >= t.limits.WeeklyDrivingCap
}

// Status returns a read-only snapshot of one driver's ledger.
func (t *Tracker) Status(driverID string) (domain.WorkHoursRecord, bool) {
	t.mu.RLock()
	e, ok := t.entries[driverID]
	t.mu.RUnlock()
	if !ok {
		return domain.WorkHoursRecord{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec, true
}

// Snapshot returns copies of every ledger record, ordered by driver id.
func (t *Tracker) Snapshot() []domain.WorkHoursRecord {
	t.mu.RLock()
	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	t.mu.RUnlock()
	sort.Strings(ids)

	out := make([]domain.WorkHoursRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := t.Status(id); ok {
			out = append(out, rec)
		}
	}
	return out
}
