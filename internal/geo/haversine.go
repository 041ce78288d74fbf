// Package geo implements great-circle distance checks for vendor delivery areas.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the haversine distance in kilometres between two coordinates.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// IsWithinDeliveryRadius reports whether the customer is at most radiusKm from the store.
func IsWithinDeliveryRadius(storeLat, storeLon, customerLat, customerLon, radiusKm float64) bool {
	return Distance(storeLat, storeLon, customerLat, customerLon) <= radiusKm
}
