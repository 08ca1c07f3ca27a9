package common

import (
	"math"
	"testing"
)

func TestHaversineDistance_SamePoint(t *testing.T) {
	a := NewLocation(17.3850, 78.4867)
	if dist := HaversineDistance(a, a); dist != 0 {
		t.Fatalf("expected 0 distance for same point, got %f", dist)
	}
}

func TestHaversineDistance_KnownPair(t *testing.T) {
	// Hyderabad to Warangal: approximately 137 km straight-line.
	hyd := NewLocation(17.3850, 78.4867)
	wgl := NewLocation(17.9689, 79.5941)

	dist := HaversineDistance(hyd, wgl)

	if math.Abs(dist-137) > 5 {
		t.Fatalf("expected ~137 km, got %f km", dist)
	}
}

func TestDistanceOrFar_MissingCoordinates(t *testing.T) {
	if got := DistanceOrFar(17.3850, 78.4867, nil, nil); got != FarAway {
		t.Fatalf("expected FarAway for missing coordinates, got %f", got)
	}
	lat := 17.9689
	if got := DistanceOrFar(17.3850, 78.4867, &lat, nil); got != FarAway {
		t.Fatalf("expected FarAway for half-missing coordinates, got %f", got)
	}
}

func TestDistanceOrFar_InvalidCoordinates(t *testing.T) {
	lat, lng := 95.0, 78.4867
	if got := DistanceOrFar(17.3850, 78.4867, &lat, &lng); got != FarAway {
		t.Fatalf("expected FarAway for out-of-range latitude, got %f", got)
	}
}

func TestDistanceOrFar_ValidCoordinates(t *testing.T) {
	lat, lng := 17.9689, 79.5941
	got := DistanceOrFar(17.3850, 78.4867, &lat, &lng)
	if got == FarAway || got <= 0 {
		t.Fatalf("expected a real distance, got %f", got)
	}
}

func TestValidateLatLng(t *testing.T) {
	if err := ValidateLatLng(17.3850, 78.4867); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateLatLng(-91, 0); err == nil {
		t.Fatal("expected error for latitude below -90")
	}
	if err := ValidateLatLng(0, 181); err == nil {
		t.Fatal("expected error for longitude above 180")
	}
}
