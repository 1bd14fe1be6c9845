package services

import (
	"context"
	"time"

	"fleet-dispatch-service/internal/domain"
)

// improvePlans runs the refinement phase: a first-improvement hill climb over
// three move families, re-inserting unassigned tasks, relocating a task
// between drivers, and swapping a pair of tasks between drivers. Only moves
// that strictly reduce total drive minutes (or place a previously unassigned
// task) are accepted. The climb stops after a pass with no accepted move or
// when the pass budget runs out.
func improvePlans(ctx context.Context, m *travelMatrix, gate HoursGate, plans []driverPlan, unassigned []string, taskStore *TaskStore, departAt time.Time, maxPasses int) ([]driverPlan, []string) {
	tasks := make(map[string]domain.Task, taskStore.Len())
	for _, t := range taskStore.Tasks() {
		tasks[t.ID] = t
	}

	if maxPasses <= 0 {
		maxPasses = 2 * taskStore.Len()
	}

	for pass := 0; pass < maxPasses; pass++ {
		if ctx.Err() != nil {
			break
		}

		improved := false
		if reinserted, rest := reinsertUnassigned(m, gate, plans, unassigned, tasks, departAt); reinserted {
			unassigned = rest
			improved = true
		}
		if relocateOnce(m, gate, plans, tasks, departAt) {
			improved = true
		}
		if swapOnce(m, gate, plans, tasks, departAt) {
			improved = true
		}

		if !improved {
			break
		}
	}

	return plans, unassigned
}

// reinsertUnassigned tries to place each still-unassigned task at its
// cheapest feasible insertion point. Routes shrink during relocation moves,
// which can open room that did not exist during construction.
func reinsertUnassigned(m *travelMatrix, gate HoursGate, plans []driverPlan, unassigned []string, tasks map[string]domain.Task, departAt time.Time) (bool, []string) {
	placed := false
	rest := make([]string, 0, len(unassigned))

	for _, id := range unassigned {
		task, ok := tasks[id]
		if !ok {
			continue
		}
		best := insertion{}
		for di := range plans {
			cand := bestInsertion(m, gate, plans[di], task, tasks, departAt)
			if !cand.found {
				continue
			}
			if !best.found || cand.costDelta < best.costDelta {
				cand.driverIdx = di
				best = cand
			}
		}
		if !best.found {
			rest = append(rest, id)
			continue
		}
		p := &plans[best.driverIdx]
		p.taskIDs = insertAt(p.taskIDs, best.position, id)
		p.metrics = best.metrics
		placed = true
	}

	return placed, rest
}

// relocateOnce moves one task from its current route to a cheaper position on
// another route. It applies the first strictly improving move it finds.
func relocateOnce(m *travelMatrix, gate HoursGate, plans []driverPlan, tasks map[string]domain.Task, departAt time.Time) bool {
	for from := range plans {
		for _, id := range plans[from].taskIDs {
			task := tasks[id]

			trimmed := removeID(plans[from].taskIDs, id)
			fromMetrics, ok := evaluateSequence(m, plans[from].driver, trimmed, tasks, departAt)
			if !ok {
				continue
			}
			saved := plans[from].metrics.driveMinutes - fromMetrics.driveMinutes

			for to := range plans {
				if to == from {
					continue
				}
				cand := bestInsertion(m, gate, plans[to], task, tasks, departAt)
				if !cand.found {
					continue
				}
				if cand.costDelta >= saved {
					continue
				}
				plans[from].taskIDs = trimmed
				plans[from].metrics = fromMetrics
				plans[to].taskIDs = insertAt(plans[to].taskIDs, cand.position, id)
				plans[to].metrics = cand.metrics
				return true
			}
		}
	}
	return false
}

// swapOnce exchanges one task between two routes when both sides stay
// feasible and total drive minutes strictly drop. Each task lands at its
// cheapest position on the other route.
func swapOnce(m *travelMatrix, gate HoursGate, plans []driverPlan, tasks map[string]domain.Task, departAt time.Time) bool {
	for a := 0; a < len(plans); a++ {
		for b := a + 1; b < len(plans); b++ {
			for _, idA := range plans[a].taskIDs {
				for _, idB := range plans[b].taskIDs {
					taskA, taskB := tasks[idA], tasks[idB]

					baseA := driverPlan{driver: plans[a].driver, taskIDs: removeID(plans[a].taskIDs, idA)}
					baseB := driverPlan{driver: plans[b].driver, taskIDs: removeID(plans[b].taskIDs, idB)}

					mA, okA := evaluateSequence(m, baseA.driver, baseA.taskIDs, tasks, departAt)
					mB, okB := evaluateSequence(m, baseB.driver, baseB.taskIDs, tasks, departAt)
					if !okA || !okB {
						continue
					}
					baseA.metrics, baseB.metrics = mA, mB

					candA := bestInsertion(m, gate, baseA, taskB, tasks, departAt)
					candB := bestInsertion(m, gate, baseB, taskA, tasks, departAt)
					if !candA.found || !candB.found {
						continue
					}

					before := plans[a].metrics.driveMinutes + plans[b].metrics.driveMinutes
					after := candA.metrics.driveMinutes + candB.metrics.driveMinutes
					if after >= before {
						continue
					}

					plans[a].taskIDs = insertAt(baseA.taskIDs, candA.position, idB)
					plans[a].metrics = candA.metrics
					plans[b].taskIDs = insertAt(baseB.taskIDs, candB.position, idA)
					plans[b].metrics = candB.metrics
					return true
				}
			}
		}
	}
	return false
}
