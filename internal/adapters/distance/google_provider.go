package distance

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// GoogleProvider implements DistanceProvider and RouteGeometryProvider over
// the Google Maps Directions API. Alternative backend to OpenRouteService,
// selected via configuration.
type GoogleProvider struct {
	client *maps.Client
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (g *GoogleProvider) Estimate(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, error) {
	est, _, err := g.leg(ctx, from, to, false)
	return est, err
}

func (g *GoogleProvider) EstimateWithGeometry(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, []domain.Coordinate, error) {
	return g.leg(ctx, from, to, true)
}

func (g *GoogleProvider) leg(ctx context.Context, from, to domain.Coordinate, wantGeometry bool) (ports.LegEstimate, []domain.Coordinate, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", from.Lat, from.Lng),
		Destination: fmt.Sprintf("%f,%f", to.Lat, to.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		return ports.LegEstimate{}, nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return ports.LegEstimate{}, nil, fmt.Errorf("directions %s -> %s: %w", from.Key(), to.Key(), domain.ErrUnreachable)
	}

	leg := routes[0].Legs[0]
	est := ports.LegEstimate{
		DistanceKm:      float64(leg.Distance.Meters) / 1000,
		DurationMinutes: leg.Duration.Minutes(),
	}

	if !wantGeometry {
		return est, nil, nil
	}

	pts, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return ports.LegEstimate{}, nil, fmt.Errorf("decode overview polyline: %w", err)
	}
	path := make([]domain.Coordinate, 0, len(pts))
	for _, p := range pts {
		path = append(path, domain.Coordinate{Lat: p.Lat, Lng: p.Lng})
	}
	return est, path, nil
}
