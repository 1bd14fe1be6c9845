package handlers

import (
	"net/http"
	"time"

	"fleet-dispatch-service/internal/workhours"
)

// ComplianceHandler exposes the fleet work-hours ledger.
type ComplianceHandler struct {
	Reporter *workhours.Reporter
}

func (h *ComplianceHandler) Report(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	now := time.Now()
	writeJSON(w, r, http.StatusOK, map[string]any{
		"drivers":              h.Reporter.Report(now),
		"drivers_needing_break": h.Reporter.DriversNeedingBreak(),
		"drivers_needing_rest":  h.Reporter.DriversNeedingRest(now),
		"total_violations":      h.Reporter.TotalViolations(),
	})
}
