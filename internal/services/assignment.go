package services

import (
	"context"
	"sort"
	"time"

	"fleet-dispatch-service/internal/domain"
)

// insertion is one candidate placement of a task into a driver's route.
type insertion struct {
	driverIdx int
	position  int
	metrics   planMetrics
	costDelta float64
	found     bool
}

// bestInsertion scans every position in one driver's route and returns the
// cheapest feasible placement, measured in added drive minutes. On an exact
// cost tie the latest position wins, so a later-created task lands after the
// tasks already in the route and the sequence stays in creation order.
func bestInsertion(m *travelMatrix, gate HoursGate, plan driverPlan, task domain.Task, tasks map[string]domain.Task, departAt time.Time) insertion {
	best := insertion{}
	for pos := 0; pos <= len(plan.taskIDs); pos++ {
		candidate := insertAt(plan.taskIDs, pos, task.ID)
		metrics, ok := evaluateSequence(m, plan.driver, candidate, tasks, departAt)
		if !ok || !fitsDuty(gate, plan.driver, metrics) {
			continue
		}
		delta := metrics.driveMinutes - plan.metrics.driveMinutes
		if !best.found || delta <= best.costDelta {
			best = insertion{position: pos, metrics: metrics, costDelta: delta, found: true}
		}
	}
	return best
}

// assignGreedy runs the construction phase: tasks ordered by priority (then
// input order) are placed one at a time at their cheapest feasible insertion
// point across the fleet. Tasks with no feasible placement stay unassigned.
func assignGreedy(ctx context.Context, m *travelMatrix, gate HoursGate, drivers []domain.Driver, taskStore *TaskStore, departAt time.Time) ([]driverPlan, []string, error) {
	tasks := make(map[string]domain.Task, taskStore.Len())
	for _, t := range taskStore.Tasks() {
		tasks[t.ID] = t
	}

	ordered := make([]domain.Task, len(taskStore.Tasks()))
	copy(ordered, taskStore.Tasks())
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return taskStore.CreationIndex(ordered[i].ID) < taskStore.CreationIndex(ordered[j].ID)
	})

	plans := make([]driverPlan, len(drivers))
	for i, d := range drivers {
		metrics, ok := evaluateSequence(m, d, nil, tasks, departAt)
		if !ok {
			// Even the empty route is impossible (start cut off from end).
			metrics = planMetrics{}
		}
		plans[i] = driverPlan{driver: d, metrics: metrics}
	}

	var unassigned []string
	for _, task := range ordered {
		if err := ctx.Err(); err != nil {
			// Deadline hit mid-construction; everything not yet placed
			// stays unassigned and the caller reports a partial result.
			unassigned = append(unassigned, remainingIDs(ordered, task.ID)...)
			return plans, unassigned, err
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
			unassigned = append(unassigned, task.ID)
			continue
		}

		p := &plans[best.driverIdx]
		p.taskIDs = insertAt(p.taskIDs, best.position, task.ID)
		p.metrics = best.metrics
	}

	return plans, unassigned, nil
}

// remainingIDs lists every task from the ordered slice starting at fromID.
func remainingIDs(ordered []domain.Task, fromID string) []string {
	out := make([]string, 0, len(ordered))
	hit := false
	for _, t := range ordered {
		if t.ID == fromID {
			hit = true
		}
		if hit {
			out = append(out, t.ID)
		}
	}
	return out
}
