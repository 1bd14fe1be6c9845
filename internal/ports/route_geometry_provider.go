package ports

import (
	"context"

	"fleet-dispatch-service/internal/domain"
)

// Optional extension of DistanceProvider that also returns the leg geometry
// (an ordered coordinate path) for map rendering. Providers without real
// road geometry are free not to implement this; callers fall back to
// straight segments.
type RouteGeometryProvider interface {
	DistanceProvider
	// Return the estimate plus the polyline from one coordinate to another.
	EstimateWithGeometry(ctx context.Context, from, to domain.Coordinate) (LegEstimate, []domain.Coordinate, error)
}
