package ports

import (
	"context"

	"fleet-dispatch-service/internal/domain"
)

// Travel distance and duration between two coordinates.
type LegEstimate struct {
	DistanceKm      float64
	DurationMinutes float64
}

// Contract for retrieving travel distance and duration between coordinates.
//
// Implementations must be deterministic for identical inputs within a run
// (callers may cache) and must wrap domain.ErrUnreachable when no route
// exists, rather than failing the whole computation.
type DistanceProvider interface {
	// Return travel distance and estimated duration from one coordinate to another.
	Estimate(ctx context.Context, from, to domain.Coordinate) (LegEstimate, error)
}
