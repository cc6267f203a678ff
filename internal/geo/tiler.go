package geo

import (
	"math"

	"populartimes-crawler/internal/models"
)

// TilingEarthRadiusKm is the earth radius the lattice step is derived from.
const TilingEarthRadiusKm = 6378.0

// LatitudeStep returns the distance in degrees between two centers of a column.
func LatitudeStep(radiusMeters int) float64 {
	return (0.25 / TilingEarthRadiusKm) * (float64(radiusMeters) / math.Pi)
}

// LongitudeStep returns the distance in degrees between two columns that start at lat.
//
// The cosine argument divides by the radius rather than the earth radius. The
// resulting lattice under-covers away from the equator; it is kept as is so that
// tilings match the ones produced by earlier crawls.
func LongitudeStep(lat float64, radiusMeters int) float64 {
	step := LatitudeStep(radiusMeters) / math.Cos(lat*math.Pi/float64(radiusMeters))
	// a negative cosine would walk the columns backwards forever
	return math.Abs(step)
}

// Tile covers the rectangle spanned by min and max with circle centers for the
// given radius. Centers are emitted column by column, west to east, each column
// south to north. The result is empty when the rectangle is empty.
func Tile(min, max models.GeoPoint, radiusMeters int) []models.GeoPoint {
	if radiusMeters <= 0 || min.Lon >= max.Lon || min.Lat >= max.Lat {
		return nil
	}

	latStep := LatitudeStep(radiusMeters)
	lonStep := LongitudeStep(min.Lat, radiusMeters)

	var centers []models.GeoPoint
	for lon := min.Lon; lon < max.Lon; lon += lonStep {
		for lat := min.Lat; lat < max.Lat; lat += latStep {
			centers = append(centers, models.GeoPoint{Lat: lat, Lon: lon})
		}
	}

	return centers
}

// Probes tags every center with the radius it was generated for.
func Probes(centers []models.GeoPoint, radiusMeters int) []models.ProbeCenter {
	probes := make([]models.ProbeCenter, 0, len(centers))
	for _, c := range centers {
		probes = append(probes, models.ProbeCenter{GeoPoint: c, RadiusMeters: radiusMeters})
	}
	return probes
}
