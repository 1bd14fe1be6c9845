package handlers

import (
	"net/http"
)

// Health is the liveness probe. It reports nothing about downstream routing
// backends or the database; readiness is the orchestrator's problem.
func Health(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "fleet-dispatch",
	})
}
