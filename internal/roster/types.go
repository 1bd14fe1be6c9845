// Package roster manages ride requests and per-driver weekly schedules:
// intake of new rides, driver suggestions for a pickup, assignment and
// reassignment checks. It complements the batch optimizer with the
// interactive, one-ride-at-a-time dispatch flow.
package roster

import (
	"errors"
	"time"

	"fleet-dispatch-service/internal/domain"
)

var (
	ErrRideNotFound   = errors.New("ride not found")
	ErrDriverNotFound = errors.New("driver not found")
)

type RideStatus string

const (
	RidePending   RideStatus = "pending"
	RideAssigned  RideStatus = "assigned"
	RideCompleted RideStatus = "completed"
	RideCancelled RideStatus = "cancelled"
)

// Ride is one requested trip, from intake through assignment.
type Ride struct {
	ID                 string              `json:"id"`
	OriginAddress      string              `json:"origin_address"`
	DestinationAddress string              `json:"destination_address"`
	Origin             domain.Coordinate   `json:"origin_coords"`
	Destination        domain.Coordinate   `json:"destination_coords"`
	RequiredArrival    time.Time           `json:"required_arrival_time"`
	Passengers         int                 `json:"num_passengers"`
	ClientName         string              `json:"client_name"`
	Recurring          bool                `json:"is_recurring"`
	RecurringDays      []time.Weekday      `json:"recurring_days,omitempty"`
	TravelMinutes      float64             `json:"estimated_travel_time_minutes"`
	DistanceKm         float64             `json:"estimated_distance_km"`
	Polyline           []domain.Coordinate `json:"ride_polyline_coords"`
	EstimatedStart     time.Time           `json:"estimated_start_time"`
	EstimatedEnd       time.Time           `json:"estimated_end_time"`
	AssignedDriverID   string              `json:"assigned_driver_id,omitempty"`
	AssignedDriverName string              `json:"assigned_driver_name,omitempty"`
	Status             RideStatus          `json:"status"`
}

// ScheduleEntry is one booked slot on a driver's day.
type ScheduleEntry struct {
	RideID             string    `json:"ride_id"`
	OriginAddress      string    `json:"origin_address"`
	DestinationAddress string    `json:"destination_address"`
	Start              time.Time `json:"start_time"`
	End                time.Time `json:"end_time"`
	DurationMinutes    float64   `json:"duration_minutes"`
}

// RosterDriver is a driver as the roster sees them: a home base plus a
// weekly schedule of booked rides.
type RosterDriver struct {
	ID            string                         `json:"id"`
	Name          string                         `json:"name"`
	BaseAddress   string                         `json:"base_address"`
	Base          domain.Coordinate              `json:"base_address_coords"`
	MaxDailyHours float64                        `json:"max_daily_hours"`
	IsAvailable   bool                           `json:"is_available"`
	Schedule      map[time.Weekday][]ScheduleEntry `json:"schedule"`
}

// bookedMinutes sums the durations already scheduled on one weekday.
func (d *RosterDriver) bookedMinutes(day time.Weekday) float64 {
	var total float64
	for _, e := range d.Schedule[day] {
		total += e.DurationMinutes
	}
	return total
}

// DriverSuggestion ranks one driver for a pickup.
type DriverSuggestion struct {
	DriverID            string            `json:"driver_id"`
	DriverName          string            `json:"driver_name"`
	AvailableForSlot    bool              `json:"is_available_for_slot"`
	DistanceToStartKm   float64           `json:"distance_to_start_km"`
	TimeToStartMinutes  float64           `json:"time_to_start_minutes"`
	BaseAddressCoords   domain.Coordinate `json:"base_address_coords"`
}

// ReassignmentCheck answers whether a ride can move to another driver.
type ReassignmentCheck struct {
	Available          bool    `json:"is_available"`
	DistanceToStartKm  float64 `json:"distance_to_start_km"`
	TimeToStartMinutes float64 `json:"time_to_start_minutes"`
	Message            string  `json:"message"`
}
