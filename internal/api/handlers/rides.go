package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"fleet-dispatch-service/internal/api/dto"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/roster"
)

// RideHandler exposes the interactive dispatch flow: ride intake, driver
// suggestions, assignment and reassignment checks.
type RideHandler struct {
	Roster *roster.Service
}

func (h *RideHandler) RequestRide(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.RequestRideRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	now := time.Now()
	arrival, err := req.ParseArrival(now)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	days, err := dto.ParseWeekdays(req.RecurringDays, now)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.Roster.RequestRide(r.Context(), roster.RideRequest{
		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		Origin:             req.OriginCoords,
		Destination:        req.DestinationCoords,
		RequiredArrival:    arrival,
		Passengers:         req.NumPassengers,
		ClientName:         req.ClientName,
		Recurring:          req.IsRecurring,
		RecurringDays:      days,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		if errors.Is(err, domain.ErrUnreachable) {
			writeError(w, r, http.StatusUnprocessableEntity, "no route between origin and destination")
			return
		}
		log.Printf("request ride failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, receipt)
}

func (h *RideHandler) AssignRide(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.AssignRideRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	if req.RideID == "" || req.DriverID == "" {
		writeError(w, r, http.StatusBadRequest, "ride_id and driver_id are required")
		return
	}
	startAt := req.EstimatedStartTime
	if startAt.IsZero() {
		startAt = time.Now()
	}

	assignment, err := h.Roster.AssignRide(r.Context(), req.RideID, req.DriverID, startAt)
	if err != nil {
		if errors.Is(err, roster.ErrRideNotFound) || errors.Is(err, roster.ErrDriverNotFound) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("assign ride failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, assignment)
}

func (h *RideHandler) SuggestDrivers(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.SuggestDriversRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	day, err := dto.ParseWeekday(req.Day, time.Now())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	suggestions, err := h.Roster.SuggestDrivers(r.Context(), roster.SuggestionQuery{
		Pickup:           req.TaskLocation,
		Day:              day,
		ExcludeDriverIDs: req.ExcludeDriverIDs,
	})
	if err != nil {
		log.Printf("suggest drivers failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"alternative_drivers": suggestions,
	})
}

func (h *RideHandler) ValidateReassignment(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ValidateReassignmentRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	check, err := h.Roster.ValidateReassignment(r.Context(), roster.ReassignmentQuery{
		DriverID: req.NewDriverID,
		TaskID:   req.TaskID,
		Location: req.TaskLocation,
	})
	if err != nil {
		if errors.Is(err, roster.ErrDriverNotFound) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("validate reassignment failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, check)
}
