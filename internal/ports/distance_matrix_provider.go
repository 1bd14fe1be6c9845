package ports

import (
	"context"

	"fleet-dispatch-service/internal/domain"
)

// Optional extension of DistanceProvider that supports batched lookups.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Return estimates from one origin to many destinations, keyed by
	// Coordinate.Key(). A destination absent from the result is unreachable.
	Estimates(ctx context.Context, origin domain.Coordinate, destinations []domain.Coordinate) (map[string]LegEstimate, error)
}
