package tracking

import (
	"math"
	"testing"
)

func TestHaversineOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111.19 km everywhere on the sphere.
	got := HaversineKm(0, 0, 1, 0)
	if math.Abs(got-111.19) > 0.1 {
		t.Errorf("HaversineKm(0,0 -> 1,0) = %v, want ~111.19", got)
	}

	// Symmetry.
	back := HaversineKm(1, 0, 0, 0)
	if math.Abs(got-back) > 1e-9 {
		t.Errorf("haversine not symmetric: %v vs %v", got, back)
	}

	// Zero distance.
	if d := HaversineKm(0.3476, 32.5825, 0.3476, 32.5825); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}
}

func TestCompassLabel(t *testing.T) {
	tests := []struct {
		heading float64
		want    string
	}{
		{0, "N"},
		{45, "NE"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{359, "N"},
		{360, "N"},
		{44, "NE"},
		{338, "N"},
	}
	for _, tt := range tests {
		if got := CompassLabel(tt.heading); got != tt.want {
			t.Errorf("CompassLabel(%v) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}
	for _, tt := range tests {
		got := Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("%s: Bearing = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPointToSegmentMeters(t *testing.T) {
	// Point on the segment itself.
	if d := PointToSegmentMeters(0, 0.5, 0, 0, 0, 1); d > 1 {
		t.Errorf("point on segment: distance = %vm, want ~0", d)
	}

	// Perpendicular offset of 0.1 degrees latitude (~11.1 km).
	d := PointToSegmentMeters(0.1, 0.5, 0, 0, 0, 1)
	if math.Abs(d-11119) > 100 {
		t.Errorf("perpendicular offset = %vm, want ~11119", d)
	}

	// Beyond the segment end the projection clamps to the endpoint.
	d = PointToSegmentMeters(0, 2, 0, 0, 0, 1)
	want := HaversineMeters(0, 2, 0, 1)
	if math.Abs(d-want) > 1 {
		t.Errorf("clamped distance = %vm, want %v", d, want)
	}
}

func TestRouteDeviationMeters(t *testing.T) {
	route := Route{Waypoints: []Waypoint{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}}}

	// Near the second segment.
	d := route.DeviationMeters(0.5, 1.001)
	if d > 200 {
		t.Errorf("deviation near polyline = %vm, want < 200", d)
	}

	// Far from every segment.
	d = route.DeviationMeters(0.5, 0.5)
	if d < 10000 {
		t.Errorf("deviation far from polyline = %vm, want > 10000", d)
	}
}
