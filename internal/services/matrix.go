package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// maxConcurrentMatrixFetches bounds parallel provider calls while the travel
// matrix is built.
const maxConcurrentMatrixFetches = 5

// travelMatrix holds pairwise leg estimates between every point the run can
// touch: driver starts, driver ends and task locations. A missing cell means
// the leg is unreachable.
type travelMatrix struct {
	cells map[string]map[string]ports.LegEstimate
}

type matrixCell struct {
	est ports.LegEstimate
	ok  bool
}

// leg returns the estimate for from -> to. Identical points cost nothing.
func (m *travelMatrix) leg(from, to domain.Coordinate) matrixCell {
	fk, tk := from.Key(), to.Key()
	if fk == tk {
		return matrixCell{ok: true}
	}
	row, ok := m.cells[fk]
	if !ok {
		return matrixCell{}
	}
	est, ok := row[tk]
	return matrixCell{est: est, ok: ok}
}

func (m *travelMatrix) reachable(from, to domain.Coordinate) bool {
	return m.leg(from, to).ok
}

type matrixRowResult struct {
	originKey string
	row       map[string]ports.LegEstimate
	err       error
}

// buildTravelMatrix fetches one matrix row per unique point, fanning out
// across the provider with a bounded number of in-flight calls. Providers
// that support batched lookups get one call per row; others are probed leg
// by leg.
func buildTravelMatrix(ctx context.Context, provider ports.DistanceProvider, points []domain.Coordinate) (*travelMatrix, error) {
	unique := dedupePoints(points)
	if len(unique) < 2 {
		return &travelMatrix{cells: map[string]map[string]ports.LegEstimate{}}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, maxConcurrentMatrixFetches)
	results := make(chan matrixRowResult, len(unique))
	var wg sync.WaitGroup

	for _, origin := range unique {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil, fmt.Errorf("build travel matrix: %w", ctx.Err())
		}

		wg.Add(1)
		go func(origin domain.Coordinate) {
			defer wg.Done()
			defer func() { <-sem }()

			row, err := fetchRow(ctx, provider, origin, unique)
			results <- matrixRowResult{originKey: origin.Key(), row: row, err: err}
		}(origin)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	cells := make(map[string]map[string]ports.LegEstimate, len(unique))
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				cancel()
			}
			continue
		}
		cells[res.originKey] = res.row
	}
	if firstErr != nil {
		return nil, fmt.Errorf("build travel matrix: %w", firstErr)
	}

	return &travelMatrix{cells: cells}, nil
}

func fetchRow(ctx context.Context, provider ports.DistanceProvider, origin domain.Coordinate, points []domain.Coordinate) (map[string]ports.LegEstimate, error) {
	destinations := make([]domain.Coordinate, 0, len(points)-1)
	for _, p := range points {
		if p.Key() == origin.Key() {
			continue
		}
		destinations = append(destinations, p)
	}

	if mp, ok := provider.(ports.DistanceMatrixProvider); ok {
		row, err := mp.Estimates(ctx, origin, destinations)
		if err != nil {
			return nil, fmt.Errorf("matrix row from %s: %w", origin.Key(), err)
		}
		return row, nil
	}

	row := make(map[string]ports.LegEstimate, len(destinations))
	for _, d := range destinations {
		est, err := provider.Estimate(ctx, origin, d)
		if errors.Is(err, domain.ErrUnreachable) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("matrix leg %s -> %s: %w", origin.Key(), d.Key(), err)
		}
		row[d.Key()] = est
	}
	return row, nil
}

func dedupePoints(points []domain.Coordinate) []domain.Coordinate {
	seen := make(map[string]struct{}, len(points))
	out := make([]domain.Coordinate, 0, len(points))
	for _, p := range points {
		k := p.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
