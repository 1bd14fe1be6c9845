package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/platform/obs"
	"fleet-dispatch-service/internal/ports"
)

// Optimizer runs one scheduling pass: validate the fleet and task pool,
// build the travel matrix, construct routes greedily, refine them with a
// local search and render the final geometry.
type Optimizer struct {
	provider ports.DistanceProvider
	gate     HoursGate
	builder  *RouteBuilder

	// MaxImprovementPasses caps the refinement phase; zero means twice the
	// task count, negative disables refinement entirely.
	MaxImprovementPasses int
}

func NewOptimizer(provider ports.DistanceProvider, gate HoursGate) *Optimizer {
	return &Optimizer{
		provider: provider,
		gate:     gate,
		builder:  NewRouteBuilder(provider),
	}
}

// OptimizeRequest is one scheduling problem.
type OptimizeRequest struct {
	Tasks   []domain.Task
	Drivers []domain.Driver

	// DepartAt anchors time-window simulation; zero means now.
	DepartAt time.Time

	// TimeBudget bounds the whole run; zero means no deadline. A run that
	// hits the deadline returns what it has with Partial set.
	TimeBudget time.Duration
}

// Optimize plans routes for the request. Validation problems return a
// *domain.ValidationError; a hit deadline is not an error and yields a
// partial result instead.
func (o *Optimizer) Optimize(ctx context.Context, req OptimizeRequest) (result domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	taskStore, err := NewTaskStore(req.Tasks)
	if err != nil {
		return domain.OptimizationResult{}, err
	}
	driverStore, err := NewDriverStore(req.Drivers)
	if err != nil {
		return domain.OptimizationResult{}, err
	}

	departAt := req.DepartAt
	if departAt.IsZero() {
		departAt = time.Now()
	}

	if req.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.TimeBudget)
		defer cancel()
	}

	drivers := driverStore.Available()
	if len(drivers) == 0 {
		return domain.OptimizationResult{
			DriversAssignedRoutes: []domain.AssignedRoute{},
			UnassignedTaskIDs:     allTaskIDs(taskStore),
		}, nil
	}

	matrix, err := buildTravelMatrix(ctx, o.provider, collectPoints(drivers, taskStore))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return domain.OptimizationResult{
				DriversAssignedRoutes: []domain.AssignedRoute{},
				UnassignedTaskIDs:     allTaskIDs(taskStore),
				Partial:               true,
			}, nil
		}
		return domain.OptimizationResult{}, fmt.Errorf("optimize: %w", err)
	}

	plans, unassigned, phaseErr := assignGreedy(ctx, matrix, o.gate, drivers, taskStore, departAt)
	partial := phaseErr != nil
	if !partial && o.MaxImprovementPasses >= 0 {
		plans, unassigned = improvePlans(ctx, matrix, o.gate, plans, unassigned, taskStore, departAt, o.MaxImprovementPasses)
		partial = ctx.Err() != nil
	}

	result, err = o.render(ctx, matrix, plans, unassigned, taskStore, departAt)
	if err != nil {
		return domain.OptimizationResult{}, err
	}
	result.Partial = partial

	if o.gate != nil {
		for _, route := range result.DriversAssignedRoutes {
			if len(route.TaskIDs) == 0 {
				continue
			}
			p := planByDriver(plans, route.DriverID)
			o.gate.Commit(route.DriverID, p.metrics.driveMinutes, p.metrics.workMinutes(), departAt)
		}
	}

	return result, nil
}

// render builds final routes from the plans. A route the geometry backend
// refuses loses the offending task (reported unassigned) and is rebuilt;
// each task can be dropped at most once, so the retry loop is bounded.
func (o *Optimizer) render(ctx context.Context, m *travelMatrix, plans []driverPlan, unassigned []string, taskStore *TaskStore, departAt time.Time) (domain.OptimizationResult, error) {
	tasks := make(map[string]domain.Task, taskStore.Len())
	for _, t := range taskStore.Tasks() {
		tasks[t.ID] = t
	}

	routes := make([]domain.AssignedRoute, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		if len(p.taskIDs) == 0 && p.driver.End() == p.driver.StartLocation {
			continue
		}

		for {
			route, err := o.builder.Build(ctx, p.driver, p.taskIDs, tasks, p.metrics)
			if err == nil {
				routes = append(routes, route)
				break
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// Out of time for geometry; ship the planned totals with a
				// straight-segment polyline.
				routes = append(routes, o.builder.BuildStraight(p.driver, p.taskIDs, tasks, p.metrics))
				break
			}

			var rbe *domain.RouteBuildError
			if !errors.As(err, &rbe) || rbe.TaskID == "" || len(p.taskIDs) == 0 {
				return domain.OptimizationResult{}, fmt.Errorf("render routes: %w", err)
			}

			p.taskIDs = removeID(p.taskIDs, rbe.TaskID)
			unassigned = append(unassigned, rbe.TaskID)
			if metrics, ok := evaluateSequence(m, p.driver, p.taskIDs, tasks, departAt); ok {
				p.metrics = metrics
			} else {
				p.metrics = planMetrics{}
			}
			if len(p.taskIDs) == 0 && p.driver.End() == p.driver.StartLocation {
				break
			}
		}
	}

	sort.Slice(unassigned, func(i, j int) bool {
		return taskStore.CreationIndex(unassigned[i]) < taskStore.CreationIndex(unassigned[j])
	})

	return domain.OptimizationResult{
		DriversAssignedRoutes: routes,
		UnassignedTaskIDs:     unassigned,
	}, nil
}

func planByDriver(plans []driverPlan, driverID string) driverPlan {
	for _, p := range plans {
		if p.driver.ID == driverID {
			return p
		}
	}
	return driverPlan{}
}

func collectPoints(drivers []domain.Driver, taskStore *TaskStore) []domain.Coordinate {
	points := make([]domain.Coordinate, 0, len(drivers)*2+taskStore.Len())
	for _, d := range drivers {
		points = append(points, d.StartLocation, d.End())
	}
	for _, t := range taskStore.Tasks() {
		points = append(points, t.Location)
	}
	return points
}

func allTaskIDs(taskStore *TaskStore) []string {
	ids := make([]string, 0, taskStore.Len())
	for _, t := range taskStore.Tasks() {
		ids = append(ids, t.ID)
	}
	return ids
}
