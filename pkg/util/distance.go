package util

import (
	"math"
)

// CalculateDistance calculates the distance between two geographic points
// using the Haversine formula.
// Parameters: lat1, lon1, lat2, lon2 in degrees
// Returns: distance in kilometers
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := degToRad(lat1)
	lat2Rad := degToRad(lat2)

	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// BoundingBox returns the min/max latitude and longitude of a box that fully
// contains the circle of radiusKm around the center point. Used as a cheap
// database-side prefilter before the exact Haversine cut.
func BoundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	const kmPerDegreeLat = 111.32

	latDelta := radiusKm / kmPerDegreeLat
	minLat = lat - latDelta
	maxLat = lat + latDelta

	// Longitude degrees shrink with latitude; guard the poles where the
	// box degenerates to the full longitude range.
	cosLat := math.Cos(degToRad(lat))
	if cosLat < 1e-6 {
		return minLat, maxLat, -180, 180
	}

	lonDelta := radiusKm / (kmPerDegreeLat * cosLat)
	minLon = lon - lonDelta
	maxLon = lon + lonDelta

	// A box that wraps past a pole or crosses the antimeridian cannot be
	// expressed as a single longitude interval, so it widens to the full
	// range and the Haversine cut discards the extras.
	if lonDelta >= 180 || minLon < -180 || maxLon > 180 {
		return minLat, maxLat, -180, 180
	}

	return minLat, maxLat, minLon, maxLon
}

// ValidCoordinates reports whether the pair is a usable WGS84 position.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
