// Package geospatial has small spherical-earth helpers.
package geospatial

import "math"

const (
	earthRadiusM    = 6371000.0
	metersPerDegLat = 111320.0
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// Square returns the corners of a square of half-side radiusMeters
// centered on a point. Latitudes are clamped to the poles and longitudes
// wrapped into [-180, 180], so west may exceed east near the antimeridian.
func Square(lat, lon, radiusMeters float64) (south, west, north, east float64) {
	latDelta := radiusMeters / metersPerDegLat
	south = math.Max(lat-latDelta, -90)
	north = math.Min(lat+latDelta, 90)

	cos := math.Cos(toRad(lat))
	if cos < 1e-6 {
		return south, -180, north, 180
	}
	lonDelta := radiusMeters / (metersPerDegLat * cos)
	if lonDelta >= 180 {
		return south, -180, north, 180
	}
	return south, wrapLon(lon - lonDelta), north, wrapLon(lon + lonDelta)
}

func wrapLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	if lon < -180 {
		return lon + 360
	}
	return lon
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
