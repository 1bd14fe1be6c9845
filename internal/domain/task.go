package domain

import "time"

// Earliest/latest allowed arrival at a task location.
// A zero Earliest means "any time before Latest"; a zero Latest means no deadline.
type TimeWindow struct {
	Earliest time.Time
	Latest   time.Time
}

// Contains reports whether an arrival time satisfies the window.
// Arrivals before Earliest are allowed (the driver waits); only Latest is binding.
func (w TimeWindow) Contains(arrival time.Time) bool {
	if !w.Latest.IsZero() && arrival.After(w.Latest) {
		return false
	}
	return true
}

// Represents a single pickup/service stop handed to the optimizer.
// A Task is immutable for the duration of one optimization run: it either
// ends up in exactly one driver's route or in the unassigned set.
type Task struct {
	ID                     string
	Location               Coordinate
	ServiceDurationMinutes float64
	TimeWindow             *TimeWindow
	Priority               int
}
