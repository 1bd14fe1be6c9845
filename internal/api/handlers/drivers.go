package handlers

import (
	"net/http"

	"fleet-dispatch-service/internal/roster"
)

// DriverHandler exposes read-only roster retrieval.
type DriverHandler struct {
	Roster *roster.Service
}

func (h *DriverHandler) ListWithSchedules(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, r, http.StatusOK, h.Roster.DriversWithSchedules())
}
