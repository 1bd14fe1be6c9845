package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/platform/obs"
	"fleet-dispatch-service/internal/ports"
)

type directionsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Instructions bool        `json:"instructions"`
	Geometry     bool        `json:"geometry"`
	Preference   string      `json:"preference"`
	Units        string      `json:"units"`
}

// The geojson directions endpoint answers with a FeatureCollection; the leg
// summary sits in the feature properties.
type directionsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// EstimateWithGeometry fetches a single driving leg with its polyline from
// the OpenRouteService directions endpoint (GeoJSON geometry).
// An empty routes array means the leg is unreachable.
func (o *ORSProvider) EstimateWithGeometry(ctx context.Context, from, to domain.Coordinate) (_ ports.LegEstimate, _ []domain.Coordinate, err error) {
	defer obs.Time(ctx, "ors.EstimateWithGeometry")(&err)

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates:  [][]float64{from.CoordsToList(), to.CoordsToList()},
		Instructions: false,
		Geometry:     true,
		Preference:   "fastest",
		Units:        "m",
	})
	if err != nil {
		return ports.LegEstimate{}, nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		var he *httpStatusError
		// 404 from the directions endpoint means no routable path.
		if errors.As(err, &he) && he.Code == http.StatusNotFound {
			return ports.LegEstimate{}, nil, fmt.Errorf("directions %s -> %s: %w", from.Key(), to.Key(), domain.ErrUnreachable)
		}
		return ports.LegEstimate{}, nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.LegEstimate{}, nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Features) == 0 {
		return ports.LegEstimate{}, nil, fmt.Errorf("directions %s -> %s: %w", from.Key(), to.Key(), domain.ErrUnreachable)
	}

	feature := dr.Features[0]
	path := make([]domain.Coordinate, 0, len(feature.Geometry.Coordinates))
	for _, c := range feature.Geometry.Coordinates {
		if len(c) < 2 {
			return ports.LegEstimate{}, nil, fmt.Errorf("directions %s -> %s: invalid coordinate in geometry", from.Key(), to.Key())
		}
		// ORS geometry is [lng, lat].
		path = append(path, domain.Coordinate{Lat: c[1], Lng: c[0]})
	}

	est := ports.LegEstimate{
		DistanceKm:      feature.Properties.Summary.Distance / 1000,
		DurationMinutes: feature.Properties.Summary.Duration / 60,
	}
	return est, path, nil
}
