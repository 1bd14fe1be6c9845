package dto

import (
	"fmt"
	"strings"
	"time"

	"fleet-dispatch-service/internal/domain"
)

type RequestRideRequest struct {
	OriginAddress      string            `json:"origin_address"`
	DestinationAddress string            `json:"destination_address"`
	OriginCoords       domain.Coordinate `json:"origin_coords"`
	DestinationCoords  domain.Coordinate `json:"destination_coords"`

	// RequiredArrivalTime accepts RFC 3339 or a bare "15:04" clock applied
	// to today.
	RequiredArrivalTime string   `json:"required_arrival_time"`
	NumPassengers       int      `json:"num_passengers"`
	ClientName          string   `json:"client_name"`
	IsRecurring         bool     `json:"is_recurring,omitempty"`
	RecurringDays       []string `json:"recurring_days,omitempty"`
}

type AssignRideRequest struct {
	RideID             string    `json:"ride_id"`
	DriverID           string    `json:"driver_id"`
	EstimatedStartTime time.Time `json:"estimated_start_time"`
}

type SuggestDriversRequest struct {
	TaskID           string            `json:"task_id"`
	TaskLocation     domain.Coordinate `json:"task_location"`
	Day              string            `json:"day,omitempty"`
	ExcludeDriverIDs []string          `json:"exclude_driver_ids,omitempty"`
}

type ValidateReassignmentRequest struct {
	NewDriverID  string            `json:"new_driver_id"`
	TaskID       string            `json:"task_id"`
	TaskLocation domain.Coordinate `json:"task_location"`
}

// ParseArrival resolves the required arrival into an absolute time.
func (r RequestRideRequest) ParseArrival(now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, r.RequiredArrivalTime); err == nil {
		return t, nil
	}
	clock, err := time.Parse("15:04", r.RequiredArrivalTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("required_arrival_time %q: want RFC 3339 or HH:MM", r.RequiredArrivalTime)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location()), nil
}

// ParseWeekday maps a day name to time.Weekday; empty falls back to today.
func ParseWeekday(name string, now time.Time) (time.Weekday, error) {
	if name == "" {
		return now.Weekday(), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// ParseWeekdays maps recurring day names, rejecting unknown names.
func ParseWeekdays(names []string, now time.Time) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		d, err := ParseWeekday(n, now)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
