package distance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/platform/obs"
	"fleet-dispatch-service/internal/ports"
)

// ORSProvider implements DistanceProvider, DistanceMatrixProvider and
// RouteGeometryProvider against OpenRouteService.
//
// It coordinates matrix lookups for cost probing, per-leg directions calls
// for route geometry, and external API calls with retry/backoff.
// The provider is safe for concurrent use.
type ORSProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
}

func NewORSProvider(apiKey string) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSProvider{
		session: &http.Client{Timeout: 15 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
	}, nil
}

// Delegate to the batched path so single lookups share the matrix logic.
func (o *ORSProvider) Estimate(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, error) {
	results, err := o.Estimates(ctx, from, []domain.Coordinate{to})
	if err != nil {
		return ports.LegEstimate{}, fmt.Errorf("estimate %s -> %s: %w", from.Key(), to.Key(), err)
	}

	result, ok := results[to.Key()]
	if !ok {
		return ports.LegEstimate{}, fmt.Errorf("estimate %s -> %s: %w", from.Key(), to.Key(), domain.ErrUnreachable)
	}
	return result, nil
}

// Compute estimates from a single origin to many destinations.
// Destinations the matrix service cannot reach are absent from the result.
func (o *ORSProvider) Estimates(ctx context.Context, origin domain.Coordinate, destinations []domain.Coordinate) (_ map[string]ports.LegEstimate, err error) {
	defer obs.Time(ctx, "ors.Estimates")(&err)

	if len(destinations) == 0 {
		return map[string]ports.LegEstimate{}, nil
	}

	seen := make(map[string]struct{}, len(destinations))
	destList := make([]domain.Coordinate, 0, len(destinations))
	for _, d := range destinations {
		if d.Key() == origin.Key() {
			continue
		}
		if _, ok := seen[d.Key()]; ok {
			continue
		}
		seen[d.Key()] = struct{}{}
		destList = append(destList, d)
	}

	if len(destList) == 0 {
		return map[string]ports.LegEstimate{}, nil
	}

	return o.fetchMatrixRow(ctx, origin, destList)
}
