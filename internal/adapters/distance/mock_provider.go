package distance

import (
	"context"
	"fmt"
	"sync/atomic"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

type MockLeg struct {
	From, To domain.Coordinate
	Km       float64
	Minutes  float64
}

// MockProvider serves fixed leg estimates for tests. Pairs not registered are
// reported unreachable, which lets tests exercise the infinite-cost path.
// FallbackHaversine switches unregistered pairs to the straight-line estimate
// instead.
type MockProvider struct {
	m                 map[string]ports.LegEstimate
	unreachable       map[string]struct{}
	FallbackHaversine bool
	calls             atomic.Int64
}

func NewMockProvider(legs []MockLeg) *MockProvider {
	m := make(map[string]ports.LegEstimate, len(legs))
	for _, l := range legs {
		m[l.From.Key()+"|"+l.To.Key()] = ports.LegEstimate{DistanceKm: l.Km, DurationMinutes: l.Minutes}
	}
	return &MockProvider{m: m, unreachable: make(map[string]struct{})}
}

// MarkUnreachable makes every leg touching c fail with domain.ErrUnreachable.
func (p *MockProvider) MarkUnreachable(c domain.Coordinate) {
	p.unreachable[c.Key()] = struct{}{}
}

// Calls reports how many estimates were requested. Safe to read once the run
// under test has finished.
func (p *MockProvider) Calls() int { return int(p.calls.Load()) }

func (p *MockProvider) Estimate(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, error) {
	p.calls.Add(1)
	if _, ok := p.unreachable[from.Key()]; ok {
		return ports.LegEstimate{}, fmt.Errorf("mock %s -> %s: %w", from.Key(), to.Key(), domain.ErrUnreachable)
	}
	if _, ok := p.unreachable[to.Key()]; ok {
		return ports.LegEstimate{}, fmt.Errorf("mock %s -> %s: %w", from.Key(), to.Key(), domain.ErrUnreachable)
	}
	if r, ok := p.m[from.Key()+"|"+to.Key()]; ok {
		return r, nil
	}
	if p.FallbackHaversine {
		km := from.HaversineKm(to)
		return ports.LegEstimate{DistanceKm: km, DurationMinutes: km / defaultAvgSpeedKmh * 60}, nil
	}
	return ports.LegEstimate{}, fmt.Errorf("mock %s -> %s: %w", from.Key(), to.Key(), domain.ErrUnreachable)
}
