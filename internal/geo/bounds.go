package geo

import (
	"fmt"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/models"
)

// Bounds is an axis-aligned lat/lon rectangle.
type Bounds struct {
	Min models.GeoPoint `json:"min"`
	Max models.GeoPoint `json:"max"`
}

// Validate rejects corners outside the coordinate ranges and empty rectangles.
func (b Bounds) Validate() error {
	if !b.Min.Valid() {
		return fmt.Errorf("%w: min corner %s out of range", apperr.ErrConfiguration, b.Min)
	}
	if !b.Max.Valid() {
		return fmt.Errorf("%w: max corner %s out of range", apperr.ErrConfiguration, b.Max)
	}
	if b.Min.Lat >= b.Max.Lat || b.Min.Lon >= b.Max.Lon {
		return fmt.Errorf("%w: min corner %s must be south-west of max corner %s",
			apperr.ErrConfiguration, b.Min, b.Max)
	}
	return nil
}
