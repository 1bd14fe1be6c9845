package distance

import (
	"context"
	"errors"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// Default effective road speed when no routing service is configured.
// 48 km/h works out to 1.25 minutes per kilometer.
const defaultAvgSpeedKmh = 48.0

// HaversineProvider is the straight-line fallback: great-circle distance at a
// constant average speed. It never fails for finite coordinates, so it also
// never reports a leg as unreachable.
type HaversineProvider struct {
	avgSpeedKmh float64
}

func NewHaversineProvider(avgSpeedKmh float64) (*HaversineProvider, error) {
	if avgSpeedKmh <= 0 {
		return nil, errors.New("haversine provider: average speed must be positive")
	}
	return &HaversineProvider{avgSpeedKmh: avgSpeedKmh}, nil
}

func (p *HaversineProvider) Estimate(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, error) {
	if err := ctx.Err(); err != nil {
		return ports.LegEstimate{}, err
	}
	km := from.HaversineKm(to)
	return ports.LegEstimate{
		DistanceKm:      km,
		DurationMinutes: km / p.avgSpeedKmh * 60,
	}, nil
}

// EstimateWithGeometry returns the estimate plus a trivial two-point path.
func (p *HaversineProvider) EstimateWithGeometry(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, []domain.Coordinate, error) {
	est, err := p.Estimate(ctx, from, to)
	if err != nil {
		return ports.LegEstimate{}, nil, err
	}
	return est, []domain.Coordinate{from, to}, nil
}
