package api

import (
	"net/http"

	"fleet-dispatch-service/internal/api/handlers"
	"fleet-dispatch-service/internal/platform/obs"
	"fleet-dispatch-service/internal/roster"
	"fleet-dispatch-service/internal/services"
	"fleet-dispatch-service/internal/workhours"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(optimizer *services.Optimizer, rosterSvc *roster.Service, reporter *workhours.Reporter) http.Handler {
	obs.Register()

	mux := http.NewServeMux()

	optimizeHandler := &handlers.OptimizeHandler{Optimizer: optimizer}
	rideHandler := &handlers.RideHandler{Roster: rosterSvc}
	driverHandler := &handlers.DriverHandler{Roster: rosterSvc}
	complianceHandler := &handlers.ComplianceHandler{Reporter: reporter}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", obs.MetricsHandler())

	mux.HandleFunc("/api/optimize_schedule", optimizeHandler.Optimize)
	mux.HandleFunc("/api/request_ride", rideHandler.RequestRide)
	mux.HandleFunc("/api/assign_ride", rideHandler.AssignRide)
	mux.HandleFunc("/api/suggest_alternative_drivers", rideHandler.SuggestDrivers)
	mux.HandleFunc("/api/validate_task_reassignment", rideHandler.ValidateReassignment)
	mux.HandleFunc("/api/drivers_with_schedules", driverHandler.ListWithSchedules)
	mux.HandleFunc("/api/compliance_report", complianceHandler.Report)

	return loggingMiddleware(metricsMiddleware(mux))
}
