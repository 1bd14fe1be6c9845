package services

import (
	"time"

	"fleet-dispatch-service/internal/domain"
)

// HoursGate is the compliance check the engine consults before extending a
// driver's planned duty. Probes compare the whole planned route against the
// driver's ledger as it stood before the run; Commit applies the final plan
// once.
type HoursGate interface {
	CanExtend(driverID string, driveMinutes, workMinutes float64) bool
	Commit(driverID string, driveMinutes, workMinutes float64, at time.Time)
}

// planMetrics summarizes one simulated route. Waiting out an Earliest window
// moves the simulation clock but never counts toward these totals.
type planMetrics struct {
	driveMinutes   float64
	serviceMinutes float64
	distanceKm     float64
}

func (m planMetrics) workMinutes() float64 { return m.driveMinutes + m.serviceMinutes }

// driverPlan is one driver's working route during a run.
type driverPlan struct {
	driver  domain.Driver
	taskIDs []string
	metrics planMetrics
}

// evaluateSequence simulates driving the task sequence from the driver's
// start to their end point. It reports false when any leg is unreachable or
// a task's latest arrival would be missed. Early arrivals wait; waiting
// advances the clock but not duty time.
func evaluateSequence(m *travelMatrix, driver domain.Driver, seq []string, tasks map[string]domain.Task, departAt time.Time) (planMetrics, bool) {
	var metrics planMetrics
	clock := departAt
	at := driver.StartLocation

	for _, id := range seq {
		task, ok := tasks[id]
		if !ok {
			return planMetrics{}, false
		}
		cell := m.leg(at, task.Location)
		if !cell.ok {
			return planMetrics{}, false
		}
		metrics.driveMinutes += cell.est.DurationMinutes
		metrics.distanceKm += cell.est.DistanceKm
		clock = clock.Add(minutesToDuration(cell.est.DurationMinutes))

		if tw := task.TimeWindow; tw != nil {
			if !tw.Earliest.IsZero() && clock.Before(tw.Earliest) {
				clock = tw.Earliest
			}
			if !tw.Contains(clock) {
				return planMetrics{}, false
			}
		}

		metrics.serviceMinutes += task.ServiceDurationMinutes
		clock = clock.Add(minutesToDuration(task.ServiceDurationMinutes))
		at = task.Location
	}

	cell := m.leg(at, driver.End())
	if !cell.ok {
		return planMetrics{}, false
	}
	metrics.driveMinutes += cell.est.DurationMinutes
	metrics.distanceKm += cell.est.DistanceKm
	return metrics, true
}

// fitsDuty checks the driver's own daily budget and, when a gate is present,
// the regulatory ledger.
func fitsDuty(gate HoursGate, driver domain.Driver, metrics planMetrics) bool {
	if metrics.workMinutes() > driver.RemainingDutyMinutes() {
		return false
	}
	if gate != nil && !gate.CanExtend(driver.ID, metrics.driveMinutes, metrics.workMinutes()) {
		return false
	}
	return true
}

// insertAt returns a new sequence with id placed at position pos.
func insertAt(seq []string, pos int, id string) []string {
	out := make([]string, 0, len(seq)+1)
	out = append(out, seq[:pos]...)
	out = append(out, id)
	out = append(out, seq[pos:]...)
	return out
}

// removeID returns seq without id, or seq unchanged when absent.
func removeID(seq []string, id string) []string {
	out := make([]string, 0, len(seq))
	for _, s := range seq {
		if s == id {
			continue
		}
		out = append(out, s)
	}
	return out
}

func minutesToDuration(min float64) time.Duration {
	return time.Duration(min * float64(time.Minute))
}
