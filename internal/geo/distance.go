package geo

import (
	"math"

	"populartimes-crawler/internal/models"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// coverageSamples is the number of sample points per rectangle edge used by CoverageGap.
const coverageSamples = 8

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b models.GeoPoint) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Nearest returns the distance from p to the closest of centers.
// It returns +Inf when centers is empty.
func Nearest(p models.GeoPoint, centers []models.GeoPoint) float64 {
	best := math.Inf(1)
	for _, c := range centers {
		if d := Distance(p, c); d < best {
			best = d
		}
	}
	return best
}

// CoverageGap samples a grid over the rectangle and returns the largest
// distance from a sample to its nearest center. A gap above the probe radius
// means parts of the rectangle are never searched.
func CoverageGap(b Bounds, centers []models.GeoPoint) float64 {
	if len(centers) == 0 {
		return math.Inf(1)
	}

	latSpan := b.Max.Lat - b.Min.Lat
	lonSpan := b.Max.Lon - b.Min.Lon

	worst := 0.0
	for i := 0; i <= coverageSamples; i++ {
		for j := 0; j <= coverageSamples; j++ {
			sample := models.GeoPoint{
				Lat: b.Min.Lat + latSpan*float64(i)/coverageSamples,
				Lon: b.Min.Lon + lonSpan*float64(j)/coverageSamples,
			}
			if d := Nearest(sample, centers); d > worst {
				worst = d
			}
		}
	}
	return worst
}
