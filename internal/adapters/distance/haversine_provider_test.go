package distance

import (
	"context"
	"math"
	"testing"

	"fleet-dispatch-service/internal/domain"
)

func TestHaversineEstimate(t *testing.T) {
	p, err := NewHaversineProvider(60)
	if err != nil {
		t.Fatalf("NewHaversineProvider: %v", err)
	}

	telAviv := domain.Coordinate{Lat: 32.0853, Lng: 34.7818}
	jerusalem := domain.Coordinate{Lat: 31.7683, Lng: 35.2137}

	est, err := p.Estimate(context.Background(), telAviv, jerusalem)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	// Great-circle distance between the two cities is roughly 54 km.
	if math.Abs(est.DistanceKm-54) > 2 {
		t.Fatalf("distance = %.2f km, want ~54", est.DistanceKm)
	}
	if math.Abs(est.DurationMinutes-est.DistanceKm) > 1e-9 {
		t.Fatalf("at 60 km/h minutes should equal km, got %.2f vs %.2f", est.DurationMinutes, est.DistanceKm)
	}
}

func TestHaversineZeroLeg(t *testing.T) {
	p, _ := NewHaversineProvider(48)
	c := domain.Coordinate{Lat: 32.08, Lng: 34.78}

	est, err := p.Estimate(context.Background(), c, c)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.DistanceKm != 0 || est.DurationMinutes != 0 {
		t.Fatalf("same-point leg should be free, got %+v", est)
	}
}

func TestHaversineRejectsNonPositiveSpeed(t *testing.T) {
	if _, err := NewHaversineProvider(0); err == nil {
		t.Fatal("expected error for zero speed")
	}
	if _, err := NewHaversineProvider(-10); err == nil {
		t.Fatal("expected error for negative speed")
	}
}
