package geo

import "testing"

func TestHaversineKm(t *testing.T) {
	// Seattle (47.6062, -122.3321) to Portland (45.5152, -122.6784) ~ 230-240 km
	d := HaversineKm(47.6062, -122.3321, 45.5152, -122.6784)
	if d < 220 || d > 250 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineMSamePoint(t *testing.T) {
	if d := HaversineM(10, 20, 10, 20); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestHaversineMShortSegment(t *testing.T) {
	// ~0.0001 degrees of latitude is roughly 11 meters
	d := HaversineM(47.0, -122.0, 47.0001, -122.0)
	if d < 10 || d > 13 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestWithinKm(t *testing.T) {
	if !WithinKm(47.6062, -122.3321, 47.6097, -122.3331, 2) {
		t.Fatalf("points ~400m apart should be within 2km")
	}
	if WithinKm(47.6062, -122.3321, 45.5152, -122.6784, 100) {
		t.Fatalf("Seattle-Portland should not be within 100km")
	}
}
