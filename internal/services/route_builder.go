package services

import (
	"context"
	"fmt"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// RouteBuilder turns a planned task sequence into a drivable route with
// polyline geometry. Providers that expose real road geometry are used per
// leg; anything else falls back to straight segments between stops.
type RouteBuilder struct {
	provider ports.DistanceProvider
}

func NewRouteBuilder(provider ports.DistanceProvider) *RouteBuilder {
	return &RouteBuilder{provider: provider}
}

// Build assembles the final route for one driver. A leg the routing backend
// cannot serve surfaces as a *domain.RouteBuildError naming the task whose
// stop broke the route, so the caller can drop it and retry.
func (b *RouteBuilder) Build(ctx context.Context, driver domain.Driver, seq []string, tasks map[string]domain.Task, metrics planMetrics) (domain.AssignedRoute, error) {
	route := domain.AssignedRoute{
		DriverID:             driver.ID,
		TaskIDs:              append([]string(nil), seq...),
		TotalDistanceKm:      metrics.distanceKm,
		TotalDurationMinutes: metrics.workMinutes(),
	}

	type stop struct {
		loc    domain.Coordinate
		taskID string
	}
	stops := make([]stop, 0, len(seq)+2)
	stops = append(stops, stop{loc: driver.StartLocation})
	for _, id := range seq {
		t, ok := tasks[id]
		if !ok {
			return domain.AssignedRoute{}, fmt.Errorf("build route driver=%s: unknown task %q", driver.ID, id)
		}
		stops = append(stops, stop{loc: t.Location, taskID: id})
	}
	end := driver.End()
	if len(stops) == 0 || stops[len(stops)-1].loc.Key() != end.Key() {
		// Final stop inherits the last task's id so a failed return leg
		// still names a droppable task.
		lastTask := ""
		if len(seq) > 0 {
			lastTask = seq[len(seq)-1]
		}
		stops = append(stops, stop{loc: end, taskID: lastTask})
	}

	gp, hasGeometry := b.provider.(ports.RouteGeometryProvider)
	if !hasGeometry {
		coords := make([]domain.Coordinate, 0, len(stops))
		for _, s := range stops {
			coords = append(coords, s.loc)
		}
		route.Polyline = straightPolyline(coords[0], coords[1:])
		return route, nil
	}

	var (
		polyline   []domain.Coordinate
		distanceKm float64
		driveMin   float64
	)
	for i := 1; i < len(stops); i++ {
		from, to := stops[i-1], stops[i]
		if from.loc.Key() == to.loc.Key() {
			continue
		}
		est, geom, err := gp.EstimateWithGeometry(ctx, from.loc, to.loc)
		if err != nil {
			return domain.AssignedRoute{}, &domain.RouteBuildError{
				DriverID: driver.ID,
				TaskID:   to.taskID,
				Err:      err,
			}
		}
		distanceKm += est.DistanceKm
		driveMin += est.DurationMinutes
		polyline = appendLeg(polyline, geom)
	}

	route.Polyline = polyline
	route.TotalDistanceKm = distanceKm
	route.TotalDurationMinutes = driveMin + metrics.serviceMinutes
	return route, nil
}

// BuildStraight renders the route with straight segments between stops and
// the planner's own totals. It never talks to the routing backend.
func (b *RouteBuilder) BuildStraight(driver domain.Driver, seq []string, tasks map[string]domain.Task, metrics planMetrics) domain.AssignedRoute {
	coords := []domain.Coordinate{driver.StartLocation}
	for _, id := range seq {
		if t, ok := tasks[id]; ok {
			coords = append(coords, t.Location)
		}
	}
	coords = append(coords, driver.End())
	return domain.AssignedRoute{
		DriverID:             driver.ID,
		TaskIDs:              append([]string(nil), seq...),
		Polyline:             straightPolyline(coords[0], coords[1:]),
		TotalDistanceKm:      metrics.distanceKm,
		TotalDurationMinutes: metrics.workMinutes(),
	}
}

// appendLeg stitches a leg's geometry onto the polyline, dropping the joint
// point the two legs share.
func appendLeg(polyline, leg []domain.Coordinate) []domain.Coordinate {
	if len(leg) == 0 {
		return polyline
	}
	if len(polyline) > 0 && polyline[len(polyline)-1] == leg[0] {
		leg = leg[1:]
	}
	return append(polyline, leg...)
}

func straightPolyline(start domain.Coordinate, rest []domain.Coordinate) []domain.Coordinate {
	out := []domain.Coordinate{start}
	for _, c := range rest {
		if out[len(out)-1] == c {
			continue
		}
		out = append(out, c)
	}
	return out
}
