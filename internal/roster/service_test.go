package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet-dispatch-service/internal/adapters/distance"
	"fleet-dispatch-service/internal/domain"
)

// Monday 2026-08-31.
var monday = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	provider, err := distance.NewHaversineProvider(48)
	if err != nil {
		t.Fatalf("NewHaversineProvider: %v", err)
	}

	s := NewService(provider)
	s.RegisterDrivers([]RosterDriver{
		{
			ID:            "d-near",
			Name:          "Avi",
			BaseAddress:   "Dizengoff 100, Tel Aviv",
			Base:          domain.Coordinate{Lat: 32.0757, Lng: 34.7755},
			MaxDailyHours: 8,
			IsAvailable:   true,
		},
		{
			ID:            "d-far",
			Name:          "Noa",
			BaseAddress:   "Herzl 50, Haifa",
			Base:          domain.Coordinate{Lat: 32.8197, Lng: 34.9993},
			MaxDailyHours: 8,
			IsAvailable:   true,
		},
		{
			ID:            "d-off",
			Name:          "Dana",
			BaseAddress:   "Jaffa 200, Jerusalem",
			Base:          domain.Coordinate{Lat: 31.7833, Lng: 35.2167},
			MaxDailyHours: 8,
			IsAvailable:   false,
		},
	})
	return s
}

func validRequest() RideRequest {
	return RideRequest{
		OriginAddress:      "Rothschild 1, Tel Aviv",
		DestinationAddress: "Jaffa 200, Jerusalem",
		Origin:             domain.Coordinate{Lat: 32.0633, Lng: 34.7706},
		Destination:        domain.Coordinate{Lat: 31.7833, Lng: 35.2167},
		RequiredArrival:    monday.Add(2 * time.Hour),
		Passengers:         2,
		ClientName:         "Acme Ltd",
	}
}

func TestRequestRideBackplansStart(t *testing.T) {
	s := newTestService(t)

	receipt, err := s.RequestRide(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("RequestRide: %v", err)
	}

	ride := receipt.Ride
	if ride.Status != RidePending {
		t.Fatalf("status = %s, want pending", ride.Status)
	}
	if ride.TravelMinutes <= 0 || ride.DistanceKm <= 0 {
		t.Fatalf("trip estimate missing: %+v", ride)
	}
	if !ride.EstimatedEnd.Equal(ride.RequiredArrival) {
		t.Fatalf("end = %v, want required arrival %v", ride.EstimatedEnd, ride.RequiredArrival)
	}
	wantStart := ride.RequiredArrival.Add(-time.Duration(ride.TravelMinutes * float64(time.Minute)))
	if !ride.EstimatedStart.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", ride.EstimatedStart, wantStart)
	}
	if len(ride.Polyline) == 0 {
		t.Fatal("expected polyline geometry")
	}

	stored, ok := s.Ride(ride.ID)
	if !ok || stored.ID != ride.ID {
		t.Fatal("ride not stored")
	}
	if len(receipt.SuggestedDrivers) == 0 {
		t.Fatal("expected driver suggestions with an available fleet")
	}
}

func TestRequestRideValidation(t *testing.T) {
	s := newTestService(t)

	req := validRequest()
	req.ClientName = ""

	_, err := s.RequestRide(context.Background(), req)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "client_name" {
		t.Fatalf("field = %s, want client_name", verr.Field)
	}
}

func TestSuggestDriversRanksByDistance(t *testing.T) {
	s := newTestService(t)

	suggestions, err := s.SuggestDrivers(context.Background(), SuggestionQuery{
		Pickup: domain.Coordinate{Lat: 32.0633, Lng: 34.7706},
		Day:    monday.Weekday(),
	})
	if err != nil {
		t.Fatalf("SuggestDrivers: %v", err)
	}

	if len(suggestions) != 2 {
		t.Fatalf("suggestions = %d, want 2 (unavailable driver excluded)", len(suggestions))
	}
	if suggestions[0].DriverID != "d-near" || suggestions[1].DriverID != "d-far" {
		t.Fatalf("order = %s, %s; want d-near first", suggestions[0].DriverID, suggestions[1].DriverID)
	}
	if suggestions[0].DistanceToStartKm >= suggestions[1].DistanceToStartKm {
		t.Fatal("nearest driver must rank first")
	}
}

func TestSuggestDriversRespectsDailyBudget(t *testing.T) {
	s := newTestService(t)

	// Book d-near solid for the day.
	s.RegisterDrivers([]RosterDriver{{
		ID: "d-near", Name: "Avi",
		Base:          domain.Coordinate{Lat: 32.0757, Lng: 34.7755},
		MaxDailyHours: 8,
		IsAvailable:   true,
		Schedule: map[time.Weekday][]ScheduleEntry{
			monday.Weekday(): {{RideID: "r1", DurationMinutes: 470}},
		},
	}})

	suggestions, err := s.SuggestDrivers(context.Background(), SuggestionQuery{
		Pickup: domain.Coordinate{Lat: 32.0633, Lng: 34.7706},
		Day:    monday.Weekday(),
	})
	if err != nil {
		t.Fatalf("SuggestDrivers: %v", err)
	}

	for _, sug := range suggestions {
		if sug.DriverID == "d-near" {
			t.Fatal("fully booked driver must not be suggested")
		}
	}
}

func TestSuggestDriversExclusionList(t *testing.T) {
	s := newTestService(t)

	suggestions, err := s.SuggestDrivers(context.Background(), SuggestionQuery{
		Pickup:           domain.Coordinate{Lat: 32.0633, Lng: 34.7706},
		Day:              monday.Weekday(),
		ExcludeDriverIDs: []string{"d-near"},
	})
	if err != nil {
		t.Fatalf("SuggestDrivers: %v", err)
	}
	for _, sug := range suggestions {
		if sug.DriverID == "d-near" {
			t.Fatal("excluded driver must not appear")
		}
	}
}

func TestAssignRideBooksSchedule(t *testing.T) {
	s := newTestService(t)

	receipt, err := s.RequestRide(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("RequestRide: %v", err)
	}

	assignment, err := s.AssignRide(context.Background(), receipt.Ride.ID, "d-near", monday)
	if err != nil {
		t.Fatalf("AssignRide: %v", err)
	}

	if assignment.Ride.Status != RideAssigned {
		t.Fatalf("status = %s, want assigned", assignment.Ride.Status)
	}
	if assignment.Ride.AssignedDriverName != "Avi" {
		t.Fatalf("driver name = %s", assignment.Ride.AssignedDriverName)
	}
	if len(assignment.DaySchedule) != 1 {
		t.Fatalf("day schedule = %d entries, want 1", len(assignment.DaySchedule))
	}
	entry := assignment.DaySchedule[0]
	if entry.RideID != receipt.Ride.ID {
		t.Fatalf("entry ride = %s", entry.RideID)
	}
	// Booked slot covers deadhead plus the trip itself.
	if entry.DurationMinutes <= receipt.Ride.TravelMinutes {
		t.Fatalf("duration %.1f should exceed bare travel %.1f", entry.DurationMinutes, receipt.Ride.TravelMinutes)
	}

	drivers := s.DriversWithSchedules()
	for _, d := range drivers {
		if d.ID == "d-near" && len(d.Schedule[monday.Weekday()]) != 1 {
			t.Fatal("schedule not visible through roster snapshot")
		}
	}
}

func TestAssignRideKeepsDaySorted(t *testing.T) {
	s := newTestService(t)

	first, err := s.RequestRide(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("RequestRide: %v", err)
	}
	second, err := s.RequestRide(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("RequestRide: %v", err)
	}

	// Assign the later slot first.
	if _, err := s.AssignRide(context.Background(), first.Ride.ID, "d-near", monday.Add(3*time.Hour)); err != nil {
		t.Fatalf("AssignRide: %v", err)
	}
	assignment, err := s.AssignRide(context.Background(), second.Ride.ID, "d-near", monday)
	if err != nil {
		t.Fatalf("AssignRide: %v", err)
	}

	if len(assignment.DaySchedule) != 2 {
		t.Fatalf("day schedule = %d entries, want 2", len(assignment.DaySchedule))
	}
	if !assignment.DaySchedule[0].Start.Before(assignment.DaySchedule[1].Start) {
		t.Fatal("day schedule must be sorted by start time")
	}
}

func TestAssignRideUnknownIDs(t *testing.T) {
	s := newTestService(t)

	if _, err := s.AssignRide(context.Background(), "missing", "d-near", monday); !errors.Is(err, ErrRideNotFound) {
		t.Fatalf("err = %v, want ErrRideNotFound", err)
	}

	receipt, err := s.RequestRide(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("RequestRide: %v", err)
	}
	if _, err := s.AssignRide(context.Background(), receipt.Ride.ID, "ghost", monday); !errors.Is(err, ErrDriverNotFound) {
		t.Fatalf("err = %v, want ErrDriverNotFound", err)
	}
}

func TestValidateReassignment(t *testing.T) {
	s := newTestService(t)

	check, err := s.ValidateReassignment(context.Background(), ReassignmentQuery{
		DriverID: "d-near",
		TaskID:   "t1",
		Location: domain.Coordinate{Lat: 32.0633, Lng: 34.7706},
	})
	if err != nil {
		t.Fatalf("ValidateReassignment: %v", err)
	}
	if !check.Available {
		t.Fatal("available driver should pass the check")
	}
	if check.DistanceToStartKm <= 0 {
		t.Fatal("expected a positive deadhead distance")
	}

	check, err = s.ValidateReassignment(context.Background(), ReassignmentQuery{
		DriverID: "d-off",
		TaskID:   "t1",
		Location: domain.Coordinate{Lat: 32.0633, Lng: 34.7706},
	})
	if err != nil {
		t.Fatalf("ValidateReassignment: %v", err)
	}
	if check.Available {
		t.Fatal("unavailable driver should fail the check")
	}

	if _, err := s.ValidateReassignment(context.Background(), ReassignmentQuery{DriverID: "ghost"}); !errors.Is(err, ErrDriverNotFound) {
		t.Fatalf("err = %v, want ErrDriverNotFound", err)
	}
}
