package domain

// Represents the materialized plan for a single driver.
// An AssignedRoute is produced fresh per optimization run and is immutable
// planning data: the caller persists it if needed, the core does not retain it.
type AssignedRoute struct {
	DriverID             string       `json:"driver_id"`
	TaskIDs              []string     `json:"assigned_task_ids_sequence"`
	Polyline             []Coordinate `json:"route_polyline_coords"`
	TotalDistanceKm      float64      `json:"total_distance_km"`
	TotalDurationMinutes float64      `json:"total_duration_minutes"`
}

// OptimizationResult is the complete answer for one run.
// Invariant: every input task id appears in exactly one route's TaskIDs or in
// UnassignedTaskIDs, never both, never twice.
type OptimizationResult struct {
	DriversAssignedRoutes []AssignedRoute `json:"drivers_assigned_routes"`
	UnassignedTaskIDs     []string        `json:"unassigned_task_ids"`
	// Partial is set when a deadline truncated the run and the result is the
	// best feasible plan constructed so far.
	Partial bool `json:"partial,omitempty"`
}
