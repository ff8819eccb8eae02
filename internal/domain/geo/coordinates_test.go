package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinates(t *testing.T) {
	t.Run("valid pair", func(t *testing.T) {
		c, err := NewCoordinates(18.0179, -76.8099)
		require.NoError(t, err)
		assert.Equal(t, 18.0179, c.Latitude)
		assert.Equal(t, -76.8099, c.Longitude)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, err := NewCoordinates(91, 0)
		assert.Error(t, err)
	})

	t.Run("longitude out of range", func(t *testing.T) {
		_, err := NewCoordinates(0, -181)
		assert.Error(t, err)
	})
}

func TestDistanceKm(t *testing.T) {
	kingston := Coordinates{Latitude: 17.9970, Longitude: -76.7936}
	montegoBay := Coordinates{Latitude: 18.4762, Longitude: -77.8939}

	t.Run("zero distance to self", func(t *testing.T) {
		assert.InDelta(t, 0, kingston.DistanceKm(kingston), 1e-9)
	})

	t.Run("kingston to montego bay", func(t *testing.T) {
		// Straight-line distance is roughly 128 km.
		d := kingston.DistanceKm(montegoBay)
		assert.InDelta(t, 128, d, 5)
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, kingston.DistanceKm(montegoBay), montegoBay.DistanceKm(kingston), 1e-9)
	})
}
