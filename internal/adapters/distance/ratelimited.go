package distance

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// RateLimitedProvider wraps another provider with a token bucket so matrix
// probing cannot exhaust an external routing API quota. Wait blocks rather
// than rejects, so callers see latency, not errors, under burst.
type RateLimitedProvider struct {
	inner   ports.DistanceProvider
	limiter *rate.Limiter
}

func NewRateLimitedProvider(inner ports.DistanceProvider, rps float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (p *RateLimitedProvider) Estimate(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return ports.LegEstimate{}, err
	}
	return p.inner.Estimate(ctx, from, to)
}

// Estimates passes batched lookups through when the wrapped provider
// supports them; one token covers the whole batch.
func (p *RateLimitedProvider) Estimates(ctx context.Context, origin domain.Coordinate, destinations []domain.Coordinate) (map[string]ports.LegEstimate, error) {
	mp, ok := p.inner.(ports.DistanceMatrixProvider)
	if !ok {
		out := make(map[string]ports.LegEstimate, len(destinations))
		for _, d := range destinations {
			est, err := p.Estimate(ctx, origin, d)
			if errors.Is(err, domain.ErrUnreachable) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out[d.Key()] = est
		}
		return out, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return mp.Estimates(ctx, origin, destinations)
}

// EstimateWithGeometry passes through when the wrapped provider has geometry.
func (p *RateLimitedProvider) EstimateWithGeometry(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, []domain.Coordinate, error) {
	gp, ok := p.inner.(ports.RouteGeometryProvider)
	if !ok {
		est, err := p.Estimate(ctx, from, to)
		if err != nil {
			return ports.LegEstimate{}, nil, err
		}
		return est, []domain.Coordinate{from, to}, nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return ports.LegEstimate{}, nil, err
	}
	return gp.EstimateWithGeometry(ctx, from, to)
}
