package services

import (
	"fmt"
	"math"
	"sort"

	"fleet-dispatch-service/internal/domain"
)

// TaskStore holds the normalized, validated task pool for one optimization
// run. Tasks are never mutated after construction; creation order (input
// order) is preserved for deterministic tie-breaking.
type TaskStore struct {
	tasks []domain.Task
	index map[string]int
}

func NewTaskStore(tasks []domain.Task) (*TaskStore, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("tasks[%d].id", i), Reason: "must be non-empty"}
		}
		if _, dup := index[t.ID]; dup {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("tasks[%d].id", i), Reason: fmt.Sprintf("duplicate task id %q", t.ID)}
		}
		if !finiteCoordinate(t.Location) {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("tasks[%d].location", i), Reason: "coordinates must be finite"}
		}
		if t.ServiceDurationMinutes < 0 {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("tasks[%d].service_duration_minutes", i), Reason: "must be non-negative"}
		}
		if t.TimeWindow != nil && !t.TimeWindow.Latest.IsZero() && !t.TimeWindow.Earliest.IsZero() &&
			t.TimeWindow.Latest.Before(t.TimeWindow.Earliest) {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("tasks[%d].time_window", i), Reason: "latest arrival precedes earliest"}
		}
		index[t.ID] = i
	}

	copied := make([]domain.Task, len(tasks))
	copy(copied, tasks)
	return &TaskStore{tasks: copied, index: index}, nil
}

// Tasks returns the pool in creation order.
func (s *TaskStore) Tasks() []domain.Task { return s.tasks }

func (s *TaskStore) Len() int { return len(s.tasks) }

// CreationIndex returns the input position of a task id (tie-break key).
func (s *TaskStore) CreationIndex(id string) int { return s.index[id] }

// DriverStore holds the normalized fleet for one optimization run.
type DriverStore struct {
	all       []domain.Driver
	available []domain.Driver
}

func NewDriverStore(drivers []domain.Driver) (*DriverStore, error) {
	seen := make(map[string]struct{}, len(drivers))
	all := make([]domain.Driver, 0, len(drivers))
	for i, d := range drivers {
		if d.ID == "" {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("drivers[%d].id", i), Reason: "must be non-empty"}
		}
		if _, dup := seen[d.ID]; dup {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("drivers[%d].id", i), Reason: fmt.Sprintf("duplicate driver id %q", d.ID)}
		}
		if !finiteCoordinate(d.StartLocation) {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("drivers[%d].start_location", i), Reason: "coordinates must be finite"}
		}
		if d.EndLocation != nil && !finiteCoordinate(*d.EndLocation) {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("drivers[%d].end_location", i), Reason: "coordinates must be finite"}
		}
		if d.MaxDailyHours < 0 {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("drivers[%d].max_daily_hours", i), Reason: "must be non-negative"}
		}
		if d.Status == "" {
			// Status is optional on input; derive it from the availability gate.
			if d.IsAvailable {
				d.Status = domain.DriverAvailable
			} else {
				d.Status = domain.DriverOffDuty
			}
		}
		if !d.Status.Valid() {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("drivers[%d].status", i), Reason: fmt.Sprintf("unknown status %q", d.Status)}
		}
		seen[d.ID] = struct{}{}
		all = append(all, d)
	}

	available := make([]domain.Driver, 0, len(all))
	for _, d := range all {
		if d.IsAvailable && d.Status == domain.DriverAvailable {
			available = append(available, d)
		}
	}
	// Most available duty budget first; id breaks ties deterministically.
	sort.SliceStable(available, func(i, j int) bool {
		bi, bj := available[i].RemainingDutyMinutes(), available[j].RemainingDutyMinutes()
		if bi != bj {
			return bi > bj
		}
		return available[i].ID < available[j].ID
	})

	return &DriverStore{all: all, available: available}, nil
}

// All returns every driver, including unavailable ones.
func (s *DriverStore) All() []domain.Driver { return s.all }

// Available returns assignable drivers ordered by remaining duty budget,
// descending.
func (s *DriverStore) Available() []domain.Driver { return s.available }

func finiteCoordinate(c domain.Coordinate) bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lng) && !math.IsInf(c.Lng, 0)
}
