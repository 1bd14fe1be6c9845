package workhours

import (
	"testing"
	"time"

	"fleet-dispatch-service/internal/domain"
)

var at = time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)

func TestCanExtendContinuousDrivingCap(t *testing.T) {
	tr := NewTracker(DefaultLimits())
	tr.Seed([]domain.WorkHoursRecord{{
		DriverID:                        "d1",
		CurrentContinuousDrivingMinutes: 235,
	}})

	if tr.CanExtend("d1", 10, 10) {
		t.Fatal("235+10 crosses the 240-minute continuous cap, want false")
	}
	if !tr.CanExtend("d1", 5, 5) {
		t.Fatal("235+5 reaches the cap exactly, want true")
	}
}

func TestCanExtendDailyDutyCap(t *testing.T) {
	tr := NewTracker(DefaultLimits())
	tr.Seed([]domain.WorkHoursRecord{{
		DriverID:         "d1",
		DailyWorkMinutes: 700,
	}})

	if tr.CanExtend("d1", 10, 30) {
		t.Fatal("700+30 crosses the 720-minute duty cap, want false")
	}
	if !tr.CanExtend("d1", 10, 20) {
		t.Fatal("700+20 reaches the duty cap exactly, want true")
	}
}

func TestCanExtendUnknownDriverStartsClean(t *testing.T) {
	tr := NewTracker(DefaultLimits())
	if !tr.CanExtend("new-driver", 60, 90) {
		t.Fatal("fresh ledger should accept a normal segment")
	}
}

func TestCommitAccumulates(t *testing.T) {
	tr := NewTracker(DefaultLimits())
	tr.Commit("d1", 30, 45, at)
	tr.Commit("d1", 10, 10, at.Add(time.Hour))

	rec, ok := tr.Status("d1")
	if !ok {
		t.Fatal("expected ledger entry after commit")
	}
	if rec.CurrentContinuousDrivingMinutes != 40 {
		t.Fatalf("continuous driving = %v, want 40", rec.CurrentContinuousDrivingMinutes)
	}
	if rec.DailyDrivingMinutes != 40 || rec.WeeklyDrivingMinutes != 40 {
		t.Fatalf("daily/weekly driving = %v/%v, want 40/40", rec.DailyDrivingMinutes, rec.WeeklyDrivingMinutes)
	}
	if rec.DailyWorkMinutes != 55 {
		t.Fatalf("daily work = %v, want 55", rec.DailyWorkMinutes)
	}
	if rec.ComplianceViolations != 0 {
		t.Fatalf("violations = %d, want 0", rec.ComplianceViolations)
	}
}

func TestCommitPastCapCountsViolation(t *testing.T) {
	tr := NewTracker(DefaultLimits())
	tr.Seed([]domain.WorkHoursRecord{{
		DriverID:                        "d1",
		CurrentContinuousDrivingMinutes: 235,
	}})

	tr.Commit("d1", 10, 10, at)

	rec, _ := tr.Status("d1")
	if rec.ComplianceViolations != 1 {
		t.Fatalf("violations = %d, want 1", rec.ComplianceViolations)
	}
	if rec.CurrentContinuousDrivingMinutes != 245 {
		t.Fatalf("continuous driving = %v, want 245 (commit still applies)", rec.CurrentContinuousDrivingMinutes)
	}
}

func TestRecordBreakResetsContinuousDriving(t *testing.T) {
	tr := NewTracker(DefaultLimits())
	tr.Commit("d1", 240, 240, at)

	if !tr.NeedsBreak("d1") {
		t.Fatal("driver at the continuous cap should need a break")
	}

	tr.RecordBreak("d1", at.Add(4*time.Hour))

	rec, _ := tr.Status("d1")
	if rec.CurrentContinuousDrivingMinutes != 0 {
		t.Fatalf("continuous driving after break = %v, want 0", rec.CurrentContinuousDrivingMinutes)
	}
	if !rec.LastBreakTime.Equal(at.Add(4 * time.Hour)) {
		t.Fatalf("last break time = %v", rec.LastBreakTime)
	}
	if tr.NeedsBreak("d1") {
		t.Fatal("break should clear the needs-break flag")
	}
	if rec.DailyDrivingMinutes != 240 {
		t.Fatal("break must not touch daily driving totals")
	}
}

func TestNeedsDailyRest(t *testing.T) {
	tr := NewTracker(DefaultLimits())
	tr.Seed([]domain.WorkHoursRecord{
		{DriverID: "capped", DailyDrivingMinutes: 720},
		{DriverID: "overdue", LastDailyRestTime: at.Add(-25 * time.Hour)},
		{DriverID: "fresh", LastDailyRestTime: at.Add(-2 * time.Hour)},
	})

	if !tr.NeedsDailyRest("capped", at) {
		t.Fatal("driver at the daily driving cap needs rest")
	}
	if !tr.NeedsDailyRest("overdue", at) {
		t.Fatal("driver 25h past their last daily rest needs rest")
	}
	if tr.NeedsDailyRest("fresh", at) {
		t.Fatal("recently rested driver does not need rest")
	}
}

func TestSnapshotOrderedByDriver(t *testing.T) {
	tr := NewTracker(DefaultLimits())
	tr.Commit("zeta", 1, 1, at)
	tr.Commit("alpha", 1, 1, at)
	tr.Commit("mike", 1, 1, at)

	snap := tr.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(snap))
	}
	for i, want := range []string{"alpha", "mike", "zeta"} {
		if snap[i].DriverID != want {
			t.Fatalf("snapshot[%d] = %s, want %s", i, snap[i].DriverID, want)
		}
	}
}
