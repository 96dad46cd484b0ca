package tracking

// Waypoint is one ordered point on a planned route.
type Waypoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// Route is the static plan a trip executes against. It is created at
// scheduling time and immutable while the trip runs; re-planning means a new
// trip. Actual road-network geometry comes from an external planner — here
// it is just the supplied polyline.
type Route struct {
	Waypoints          []Waypoint `json:"waypoints"`
	PlannedDistanceKm  float64    `json:"planned_distance_km"`
	PlannedDurationMin float64    `json:"planned_duration_min"`
	// DeviationThresholdM of 0 means "use the configured default".
	DeviationThresholdM float64 `json:"deviation_threshold_m,omitempty"`
}

// Validate reports ErrInvalidRoute for a route with no waypoints. A trip
// cannot be estimated against an empty polyline; this is a configuration
// defect surfaced to the caller, never silently defaulted.
func (r Route) Validate() error {
	if len(r.Waypoints) == 0 {
		return ErrInvalidRoute
	}
	return nil
}

// Origin returns the first waypoint.
func (r Route) Origin() Waypoint {
	return r.Waypoints[0]
}

// Destination returns the final waypoint.
func (r Route) Destination() Waypoint {
	return r.Waypoints[len(r.Waypoints)-1]
}

// DeviationMeters returns the minimum perpendicular distance in meters from
// the given position to the route polyline, checking every consecutive
// waypoint pair. A single-waypoint route degenerates to point distance.
func (r Route) DeviationMeters(lat, lng float64) float64 {
	if len(r.Waypoints) == 1 {
		w := r.Waypoints[0]
		return HaversineMeters(lat, lng, w.Lat, w.Lng)
	}
	min := -1.0
	for i := 0; i < len(r.Waypoints)-1; i++ {
		a, b := r.Waypoints[i], r.Waypoints[i+1]
		d := PointToSegmentMeters(lat, lng, a.Lat, a.Lng, b.Lat, b.Lng)
		if min < 0 || d < min {
			min = d
		}
	}
	return min
}
