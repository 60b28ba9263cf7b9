package geo

import (
	"math"

	"github.com/septivank/attendance-ingestion-worker/internal/domain"
)

// EarthRadiusMeters is the equatorial radius used for surface distances.
const EarthRadiusMeters = 6378137.0

// Distance returns the great-circle distance between a and b in whole metres.
func Distance(a, b domain.Point) float64 {
	lat1 := deg2rad(a.Latitude)
	lat2 := deg2rad(b.Latitude)
	dLat := deg2rad(b.Latitude - a.Latitude)
	dLon := deg2rad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(EarthRadiusMeters * c)
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
