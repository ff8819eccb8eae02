// Package geo provides geographic value objects shared across the domain.
package geo

import (
	"fmt"
	"math"
)

// earthRadiusKm is the mean radius of the Earth in kilometers.
const earthRadiusKm = 6371.0

// Coordinates is an immutable latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// NewCoordinates validates and creates a coordinate pair.
func NewCoordinates(lat, lng float64) (Coordinates, error) {
	if lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("latitude out of range: %f", lat)
	}
	if lng < -180 || lng > 180 {
		return Coordinates{}, fmt.Errorf("longitude out of range: %f", lng)
	}
	return Coordinates{Latitude: lat, Longitude: lng}, nil
}

// DistanceKm returns the great-circle distance to other in kilometers,
// computed with the haversine formula.
func (c Coordinates) DistanceKm(other Coordinates) float64 {
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - c.Latitude) * math.Pi / 180
	dLng := (other.Longitude - c.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// String returns the pair formatted as "lat,lng".
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}
