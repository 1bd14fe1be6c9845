package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"fleet-dispatch-service/internal/api/dto"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/platform/obs"
	"fleet-dispatch-service/internal/services"
)

type OptimizeHandler struct {
	Optimizer *services.Optimizer

	// MaxTimeBudget caps what callers may request; zero means uncapped.
	MaxTimeBudget time.Duration
}

// Optimize runs one scheduling pass over the posted fleet and task pool.
// Validation problems reject the whole call; per-task infeasibility never
// does. A run that hits its deadline still answers 200 with a partial plan.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizeScheduleRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	tasks := make([]domain.Task, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		tasks = append(tasks, t.ToDomain())
	}
	drivers := make([]domain.Driver, 0, len(req.Drivers))
	for _, d := range req.Drivers {
		drivers = append(drivers, d.ToDomain())
	}

	svcReq := services.OptimizeRequest{
		Tasks:   tasks,
		Drivers: drivers,
	}
	if req.DepartAt != nil {
		svcReq.DepartAt = *req.DepartAt
	}
	if req.TimeBudgetMs > 0 {
		svcReq.TimeBudget = time.Duration(req.TimeBudgetMs) * time.Millisecond
		if h.MaxTimeBudget > 0 && svcReq.TimeBudget > h.MaxTimeBudget {
			svcReq.TimeBudget = h.MaxTimeBudget
		}
	}

	result, err := h.Optimizer.Optimize(r.Context(), svcReq)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			obs.OptimizeRuns.WithLabelValues("rejected").Inc()
			writeError(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		obs.OptimizeRuns.WithLabelValues("error").Inc()
		log.Printf("optimize failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	outcome := "ok"
	if result.Partial {
		outcome = "partial"
	}
	obs.OptimizeRuns.WithLabelValues(outcome).Inc()

	assigned := 0
	for _, route := range result.DriversAssignedRoutes {
		assigned += len(route.TaskIDs)
	}
	obs.TasksPlanned.WithLabelValues("assigned").Add(float64(assigned))
	obs.TasksPlanned.WithLabelValues("unassigned").Add(float64(len(result.UnassignedTaskIDs)))

	writeJSON(w, r, http.StatusOK, result)
}
