package roster

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

const (
	// Suggestions cap, matching what a dispatcher can reasonably compare.
	maxSuggestions = 5

	// Pickup service time assumed when ranking drivers for a slot.
	defaultServiceMinutes = 30
)

// Service is the in-memory ride roster. Safe for concurrent use; the rides
// and drivers maps are guarded by one lock since every operation touches
// both.
type Service struct {
	provider ports.DistanceProvider

	mu      sync.RWMutex
	rides   map[string]*Ride
	drivers map[string]*RosterDriver
}

func NewService(provider ports.DistanceProvider) *Service {
	return &Service{
		provider: provider,
		rides:    make(map[string]*Ride),
		drivers:  make(map[string]*RosterDriver),
	}
}

// RegisterDrivers loads or replaces the roster's driver set.
func (s *Service) RegisterDrivers(drivers []RosterDriver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range drivers {
		d := drivers[i]
		if d.Schedule == nil {
			d.Schedule = make(map[time.Weekday][]ScheduleEntry)
		}
		s.drivers[d.ID] = &d
	}
}

// RideRequest is the intake form for one trip. Coordinates arrive already
// geocoded; address strings are carried for display only.
type RideRequest struct {
	OriginAddress      string
	DestinationAddress string
	Origin             domain.Coordinate
	Destination        domain.Coordinate
	RequiredArrival    time.Time
	Passengers         int
	ClientName         string
	Recurring          bool
	RecurringDays      []time.Weekday
}

func (r RideRequest) validate() error {
	switch {
	case r.OriginAddress == "":
		return &domain.ValidationError{Field: "origin_address", Reason: "must be non-empty"}
	case r.DestinationAddress == "":
		return &domain.ValidationError{Field: "destination_address", Reason: "must be non-empty"}
	case r.RequiredArrival.IsZero():
		return &domain.ValidationError{Field: "required_arrival_time", Reason: "must be set"}
	case r.Passengers <= 0:
		return &domain.ValidationError{Field: "num_passengers", Reason: "must be positive"}
	case r.ClientName == "":
		return &domain.ValidationError{Field: "client_name", Reason: "must be non-empty"}
	}
	return nil
}

// RideReceipt is what intake hands back: the stored ride plus ranked driver
// suggestions for its pickup.
type RideReceipt struct {
	Ride             Ride               `json:"ride"`
	SuggestedDrivers []DriverSuggestion `json:"suggested_drivers"`
}

// RequestRide estimates the trip, backplans its start from the required
// arrival, stores it pending and suggests drivers for the pickup. A failed
// suggestion pass does not fail the intake.
func (s *Service) RequestRide(ctx context.Context, req RideRequest) (*RideReceipt, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	est, polyline, err := s.legWithGeometry(ctx, req.Origin, req.Destination)
	if err != nil {
		return nil, fmt.Errorf("request ride: estimate trip: %w", err)
	}

	start := req.RequiredArrival.Add(-time.Duration(est.DurationMinutes * float64(time.Minute)))
	ride := &Ride{
		ID:                 uuid.NewString(),
		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		Origin:             req.Origin,
		Destination:        req.Destination,
		RequiredArrival:    req.RequiredArrival,
		Passengers:         req.Passengers,
		ClientName:         req.ClientName,
		Recurring:          req.Recurring,
		RecurringDays:      req.RecurringDays,
		TravelMinutes:      est.DurationMinutes,
		DistanceKm:         est.DistanceKm,
		Polyline:           polyline,
		EstimatedStart:     start,
		EstimatedEnd:       req.RequiredArrival,
		Status:             RidePending,
	}

	s.mu.Lock()
	s.rides[ride.ID] = ride
	s.mu.Unlock()

	suggestions, err := s.SuggestDrivers(ctx, SuggestionQuery{
		Pickup: req.Origin,
		Day:    start.Weekday(),
	})
	if err != nil {
		suggestions = nil
	}

	return &RideReceipt{Ride: *ride, SuggestedDrivers: suggestions}, nil
}

// SuggestionQuery asks which drivers could take a pickup.
type SuggestionQuery struct {
	Pickup           domain.Coordinate
	Day              time.Weekday
	ExcludeDriverIDs []string
}

// SuggestDrivers ranks available drivers by travel distance from their base
// to the pickup, keeping only those whose day still has room for the trip.
func (s *Service) SuggestDrivers(ctx context.Context, q SuggestionQuery) ([]DriverSuggestion, error) {
	excluded := make(map[string]struct{}, len(q.ExcludeDriverIDs))
	for _, id := range q.ExcludeDriverIDs {
		excluded[id] = struct{}{}
	}

	s.mu.RLock()
	candidates := make([]*RosterDriver, 0, len(s.drivers))
	for _, d := range s.drivers {
		if _, skip := excluded[d.ID]; skip || !d.IsAvailable {
			continue
		}
		candidates = append(candidates, d)
	}
	s.mu.RUnlock()

	suggestions := make([]DriverSuggestion, 0, len(candidates))
	for _, d := range candidates {
		est, err := s.provider.Estimate(ctx, d.Base, q.Pickup)
		if err != nil {
			// Unroutable base is the driver's problem, not the query's.
			continue
		}

		s.mu.RLock()
		booked := d.bookedMinutes(q.Day)
		s.mu.RUnlock()

		needed := est.DurationMinutes + defaultServiceMinutes
		if booked+needed > d.MaxDailyHours*60 {
			continue
		}

		suggestions = append(suggestions, DriverSuggestion{
			DriverID:           d.ID,
			DriverName:         d.Name,
			AvailableForSlot:   true,
			DistanceToStartKm:  est.DistanceKm,
			TimeToStartMinutes: est.DurationMinutes,
			BaseAddressCoords:  d.Base,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].DistanceToStartKm != suggestions[j].DistanceToStartKm {
			return suggestions[i].DistanceToStartKm < suggestions[j].DistanceToStartKm
		}
		return suggestions[i].DriverID < suggestions[j].DriverID
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}

// Assignment is the outcome of binding a ride to a driver.
type Assignment struct {
	Ride        Ride            `json:"ride"`
	DaySchedule []ScheduleEntry `json:"driver_updated_schedule"`
}

// AssignRide binds a pending ride to a driver and books the slot on the
// driver's schedule for the start day, keeping the day sorted by start time.
// The booked duration covers deadheading from base to the pickup plus the
// trip itself.
func (s *Service) AssignRide(ctx context.Context, rideID, driverID string, startAt time.Time) (*Assignment, error) {
	s.mu.RLock()
	ride, rideOK := s.rides[rideID]
	driver, driverOK := s.drivers[driverID]
	s.mu.RUnlock()

	if !rideOK {
		return nil, fmt.Errorf("assign ride %s: %w", rideID, ErrRideNotFound)
	}
	if !driverOK {
		return nil, fmt.Errorf("assign ride %s to %s: %w", rideID, driverID, ErrDriverNotFound)
	}

	// Without a routable base we book a flat half hour of deadhead.
	deadheadMinutes := float64(defaultServiceMinutes)
	if est, err := s.provider.Estimate(ctx, driver.Base, ride.Origin); err == nil {
		deadheadMinutes = est.DurationMinutes
	}
	duration := deadheadMinutes + ride.TravelMinutes

	s.mu.Lock()
	defer s.mu.Unlock()

	ride.AssignedDriverID = driver.ID
	ride.AssignedDriverName = driver.Name
	ride.Status = RideAssigned
	ride.EstimatedStart = startAt
	ride.EstimatedEnd = startAt.Add(time.Duration(duration * float64(time.Minute)))

	day := startAt.Weekday()
	entry := ScheduleEntry{
		RideID:             ride.ID,
		OriginAddress:      ride.OriginAddress,
		DestinationAddress: ride.DestinationAddress,
		Start:              startAt,
		End:                ride.EstimatedEnd,
		DurationMinutes:    duration,
	}
	driver.Schedule[day] = append(driver.Schedule[day], entry)
	sort.Slice(driver.Schedule[day], func(i, j int) bool {
		return driver.Schedule[day][i].Start.Before(driver.Schedule[day][j].Start)
	})

	return &Assignment{
		Ride:        *ride,
		DaySchedule: append([]ScheduleEntry(nil), driver.Schedule[day]...),
	}, nil
}

// ReassignmentQuery asks whether one driver can take over a task at a
// location.
type ReassignmentQuery struct {
	DriverID string
	TaskID   string
	Location domain.Coordinate
}

// ValidateReassignment checks a proposed handover: the target driver must
// exist and be available; distance and deadhead time to the task come back
// either way so the dispatcher can judge.
func (s *Service) ValidateReassignment(ctx context.Context, q ReassignmentQuery) (ReassignmentCheck, error) {
	s.mu.RLock()
	driver, ok := s.drivers[q.DriverID]
	s.mu.RUnlock()
	if !ok {
		return ReassignmentCheck{}, fmt.Errorf("validate reassignment of %s: %w", q.TaskID, ErrDriverNotFound)
	}

	check := ReassignmentCheck{Available: driver.IsAvailable}
	if est, err := s.provider.Estimate(ctx, driver.Base, q.Location); err == nil {
		check.DistanceToStartKm = est.DistanceKm
		check.TimeToStartMinutes = est.DurationMinutes
	}

	if check.Available {
		check.Message = "driver available, short deadhead"
	} else {
		check.Message = "driver unavailable or out of constraints"
	}
	return check, nil
}

// Ride returns one ride by id.
func (s *Service) Ride(rideID string) (Ride, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rides[rideID]
	if !ok {
		return Ride{}, false
	}
	return *r, true
}

// DriversWithSchedules snapshots the full roster, ordered by driver id.
func (s *Service) DriversWithSchedules() []RosterDriver {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RosterDriver, 0, len(s.drivers))
	for _, d := range s.drivers {
		copied := *d
		copied.Schedule = make(map[time.Weekday][]ScheduleEntry, len(d.Schedule))
		for day, entries := range d.Schedule {
			copied.Schedule[day] = append([]ScheduleEntry(nil), entries...)
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) legWithGeometry(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, []domain.Coordinate, error) {
	if gp, ok := s.provider.(ports.RouteGeometryProvider); ok {
		return gp.EstimateWithGeometry(ctx, from, to)
	}
	est, err := s.provider.Estimate(ctx, from, to)
	if err != nil {
		return ports.LegEstimate{}, nil, err
	}
	return est, []domain.Coordinate{from, to}, nil
}
