package tracking

import "math"

const earthRadiusM = 6371000 // Earth's radius in meters.

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// HaversineMeters calculates the great-circle distance between two
// geographical points in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// HaversineKm is HaversineMeters scaled to kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineMeters(lat1, lon1, lat2, lon2) / 1000
}

// Bearing calculates the initial bearing (direction) in degrees from the
// first point to the second, normalized to [0, 360).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLon := toRadians(lon2 - lon1)

	y := math.Sin(deltaLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)
	bearingDeg := toDegrees(math.Atan2(y, x))

	return math.Mod(bearingDeg+360, 360)
}

// CompassLabel maps a heading in degrees to one of the 8 compass points.
// Headings are normalized first so 360 and 0 both read "N".
func CompassLabel(headingDegrees float64) string {
	h := math.Mod(headingDegrees, 360)
	if h < 0 {
		h += 360
	}
	idx := int(math.Round(h/45)) % 8
	return compassPoints[idx]
}

// PointToSegmentMeters returns the distance in meters from a point to the
// nearest spot on the segment (lat1,lon1)-(lat2,lon2). The projection uses a
// local flat-earth approximation with latitude-corrected longitude, which is
// accurate at road-route scale.
func PointToSegmentMeters(lat, lon, lat1, lon1, lat2, lon2 float64) float64 {
	lonScale := math.Cos(toRadians(lat1))

	px := (lon - lon1) * lonScale
	py := lat - lat1
	sx := (lon2 - lon1) * lonScale
	sy := lat2 - lat1

	segLenSq := sx*sx + sy*sy
	t := 0.0
	if segLenSq > 0 {
		t = (px*sx + py*sy) / segLenSq
		t = math.Max(0, math.Min(1, t))
	}

	nearestLat := lat1 + t*(lat2-lat1)
	nearestLon := lon1 + t*(lon2-lon1)
	return HaversineMeters(lat, lon, nearestLat, nearestLon)
}

// toRadians converts an angle from degrees to radians.
func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// toDegrees converts an angle from radians to degrees.
func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
