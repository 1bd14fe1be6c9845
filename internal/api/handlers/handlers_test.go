package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleet-dispatch-service/internal/adapters/distance"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/roster"
	"fleet-dispatch-service/internal/services"
	"fleet-dispatch-service/internal/workhours"
)

func newOptimizeHandler(t *testing.T) *OptimizeHandler {
	t.Helper()
	provider, err := distance.NewHaversineProvider(48)
	if err != nil {
		t.Fatalf("NewHaversineProvider: %v", err)
	}
	tracker := workhours.NewTracker(workhours.DefaultLimits())
	return &OptimizeHandler{Optimizer: services.NewOptimizer(provider, tracker)}
}

func newRideHandler(t *testing.T) *RideHandler {
	t.Helper()
	provider, err := distance.NewHaversineProvider(48)
	if err != nil {
		t.Fatalf("NewHaversineProvider: %v", err)
	}
	s := roster.NewService(provider)
	s.RegisterDrivers([]roster.RosterDriver{{
		ID:            "d1",
		Name:          "Avi",
		Base:          domain.Coordinate{Lat: 32.0757, Lng: 34.7755},
		MaxDailyHours: 8,
		IsAvailable:   true,
	}})
	return &RideHandler{Roster: s}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestOptimizeEndpoint(t *testing.T) {
	h := newOptimizeHandler(t)

	body := `{
		"tasks": [
			{"id": "t1", "location": {"lat": 32.09, "lng": 34.79}, "service_duration_minutes": 15},
			{"id": "t2", "location": {"lat": 32.11, "lng": 34.80}, "service_duration_minutes": 15}
		],
		"drivers": [
			{"id": "d1", "name": "Avi", "start_location": {"lat": 32.08, "lng": 34.78}, "max_daily_hours": 8, "is_available": true}
		]
	}`
	rec := postJSON(t, h.Optimize, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result domain.OptimizationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.UnassignedTaskIDs) != 0 {
		t.Fatalf("unassigned = %v, want none", result.UnassignedTaskIDs)
	}

	assigned := 0
	for _, route := range result.DriversAssignedRoutes {
		assigned += len(route.TaskIDs)
	}
	if assigned != 2 {
		t.Fatalf("assigned tasks = %d, want 2", assigned)
	}
}

func TestOptimizeEndpointEmptyFleet(t *testing.T) {
	h := newOptimizeHandler(t)

	body := `{
		"tasks": [
			{"id": "t1", "location": {"lat": 32.09, "lng": 34.79}},
			{"id": "t2", "location": {"lat": 32.11, "lng": 34.80}}
		],
		"drivers": []
	}`
	rec := postJSON(t, h.Optimize, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result domain.OptimizationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.DriversAssignedRoutes) != 0 {
		t.Fatalf("routes = %+v, want none", result.DriversAssignedRoutes)
	}
	if len(result.UnassignedTaskIDs) != 2 {
		t.Fatalf("unassigned = %v, want both tasks", result.UnassignedTaskIDs)
	}
}

func TestOptimizeEndpointValidationError(t *testing.T) {
	h := newOptimizeHandler(t)

	body := `{
		"tasks": [{"id": "", "location": {"lat": 32.09, "lng": 34.79}}],
		"drivers": [{"id": "d1", "start_location": {"lat": 32.08, "lng": 34.78}, "max_daily_hours": 8, "is_available": true}]
	}`
	rec := postJSON(t, h.Optimize, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOptimizeEndpointRejectsUnknownFields(t *testing.T) {
	h := newOptimizeHandler(t)

	rec := postJSON(t, h.Optimize, `{"drivers": [], "surprise": true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOptimizeEndpointMethodNotAllowed(t *testing.T) {
	h := newOptimizeHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Optimize(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("Allow = %q", rec.Header().Get("Allow"))
	}
}

func TestRequestRideAndAssignFlow(t *testing.T) {
	h := newRideHandler(t)

	body := `{
		"origin_address": "Rothschild 1, Tel Aviv",
		"destination_address": "Jaffa 200, Jerusalem",
		"origin_coords": {"lat": 32.0633, "lng": 34.7706},
		"destination_coords": {"lat": 31.7833, "lng": 35.2167},
		"required_arrival_time": "14:30",
		"num_passengers": 2,
		"client_name": "Acme Ltd"
	}`
	rec := postJSON(t, h.RequestRide, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var receipt roster.RideReceipt
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if receipt.Ride.Status != roster.RidePending {
		t.Fatalf("ride status = %s, want pending", receipt.Ride.Status)
	}
	if len(receipt.SuggestedDrivers) == 0 {
		t.Fatal("expected driver suggestions")
	}

	assignBody, _ := json.Marshal(map[string]any{
		"ride_id":              receipt.Ride.ID,
		"driver_id":            "d1",
		"estimated_start_time": time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
	})
	rec = postJSON(t, h.AssignRide, string(assignBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("assign status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var assignment roster.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &assignment); err != nil {
		t.Fatalf("decode assignment: %v", err)
	}
	if assignment.Ride.Status != roster.RideAssigned {
		t.Fatalf("ride status = %s, want assigned", assignment.Ride.Status)
	}
	if len(assignment.DaySchedule) != 1 {
		t.Fatalf("day schedule entries = %d, want 1", len(assignment.DaySchedule))
	}
}

func TestRequestRideBadArrivalTime(t *testing.T) {
	h := newRideHandler(t)

	body := `{
		"origin_address": "A",
		"destination_address": "B",
		"origin_coords": {"lat": 32.06, "lng": 34.77},
		"destination_coords": {"lat": 31.78, "lng": 35.21},
		"required_arrival_time": "half past nine",
		"num_passengers": 1,
		"client_name": "Acme"
	}`
	rec := postJSON(t, h.RequestRide, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAssignRideUnknownRide(t *testing.T) {
	h := newRideHandler(t)

	rec := postJSON(t, h.AssignRide, `{"ride_id": "ghost", "driver_id": "d1"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSuggestDriversEndpoint(t *testing.T) {
	h := newRideHandler(t)

	rec := postJSON(t, h.SuggestDrivers, `{
		"task_id": "t1",
		"task_location": {"lat": 32.0633, "lng": 34.7706},
		"day": "Monday"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AlternativeDrivers []roster.DriverSuggestion `json:"alternative_drivers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.AlternativeDrivers) != 1 || resp.AlternativeDrivers[0].DriverID != "d1" {
		t.Fatalf("suggestions = %+v", resp.AlternativeDrivers)
	}
}

func TestValidateReassignmentEndpoint(t *testing.T) {
	h := newRideHandler(t)

	rec := postJSON(t, h.ValidateReassignment, `{
		"new_driver_id": "d1",
		"task_id": "t9",
		"task_location": {"lat": 32.0633, "lng": 34.7706}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var check roster.ReassignmentCheck
	if err := json.Unmarshal(rec.Body.Bytes(), &check); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !check.Available {
		t.Fatal("d1 should be available")
	}

	rec = postJSON(t, h.ValidateReassignment, `{"new_driver_id": "ghost", "task_id": "t9", "task_location": {"lat": 1, "lng": 1}}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestComplianceReportEndpoint(t *testing.T) {
	tracker := workhours.NewTracker(workhours.DefaultLimits())
	tracker.Commit("d1", 240, 260, time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	h := &ComplianceHandler{Reporter: workhours.NewReporter(tracker)}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Report(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Drivers             []workhours.DriverCompliance `json:"drivers"`
		DriversNeedingBreak []string                     `json:"drivers_needing_break"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Drivers) != 1 || resp.Drivers[0].DriverID != "d1" {
		t.Fatalf("drivers = %+v", resp.Drivers)
	}
	if len(resp.DriversNeedingBreak) != 1 {
		t.Fatalf("needing break = %v", resp.DriversNeedingBreak)
	}
}

func TestDriversWithSchedulesEndpoint(t *testing.T) {
	h := newRideHandler(t)
	dh := &DriverHandler{Roster: h.Roster}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	dh.ListWithSchedules(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var drivers []roster.RosterDriver
	if err := json.Unmarshal(rec.Body.Bytes(), &drivers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ID != "d1" {
		t.Fatalf("drivers = %+v", drivers)
	}
}
