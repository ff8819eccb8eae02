package geocoding

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/neighbourhood/backend/internal/domain/geo"
)

// DefaultParish is the centroid used when a parish name matches nothing
// in the table. St Andrew covers the main metropolitan area.
const DefaultParish = "St Andrew"

// parishCentroids maps each Jamaican parish to a representative
// center-point coordinate used as a degraded geocoding fallback.
var parishCentroids = map[string]geo.Coordinates{
	"Kingston":     {Latitude: 17.9970, Longitude: -76.7936},
	"St Andrew":    {Latitude: 18.0391, Longitude: -76.7567},
	"St Catherine": {Latitude: 17.9919, Longitude: -77.0011},
	"Clarendon":    {Latitude: 17.9611, Longitude: -77.2500},
	"Manchester":   {Latitude: 18.0500, Longitude: -77.5000},
	"St Elizabeth": {Latitude: 18.0667, Longitude: -77.7500},
	"Westmoreland": {Latitude: 18.3167, Longitude: -78.1333},
	"Hanover":      {Latitude: 18.4167, Longitude: -78.1333},
	"St James":     {Latitude: 18.4833, Longitude: -77.9167},
	"Trelawny":     {Latitude: 18.3667, Longitude: -77.6500},
	"St Ann":       {Latitude: 18.4333, Longitude: -77.2000},
	"St Mary":      {Latitude: 18.3500, Longitude: -76.9000},
	"Portland":     {Latitude: 18.2000, Longitude: -76.4500},
	"St Thomas":    {Latitude: 17.9000, Longitude: -76.3500},
}

var titleCaser = cases.Title(language.English)

// ParishCentroid returns the fallback coordinate for a parish. Matching is
// case-insensitive and tolerates partial names ("St. Andrew Parish" still
// resolves). The second return is false when the name matched nothing and
// the DefaultParish centroid was used instead.
func ParishCentroid(parish string) (geo.Coordinates, bool) {
	clean := titleCaser.String(strings.Join(strings.Fields(parish), " "))
	if clean == "" {
		return parishCentroids[DefaultParish], false
	}

	if c, ok := parishCentroids[clean]; ok {
		return c, true
	}
	for name, c := range parishCentroids {
		if strings.Contains(clean, name) || strings.Contains(name, clean) {
			return c, true
		}
	}
	return parishCentroids[DefaultParish], false
}
