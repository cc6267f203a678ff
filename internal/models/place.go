package models

import "fmt"

const (
	// UnknownRating marks a place whose rating could not be read from the map-search payload.
	UnknownRating = -1.0
	// UnknownReviews marks a place whose review count could not be read.
	UnknownReviews = -1

	DaysPerWeek  = 7
	HoursPerDay  = 24
	MaxOccupancy = 100.0
)

// WeekdayNames indexes weekday names by weekday index, 0 = Sunday.
var WeekdayNames = [DaysPerWeek]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within the latitude and longitude ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%f, %f)", p.Lat, p.Lon)
}

// ProbeCenter is a point a Nearby Search is anchored at, together with its radius.
type ProbeCenter struct {
	GeoPoint
	RadiusMeters int `json:"radius_m"`
}

// PlaceID is the opaque identifier minted by the Places provider.
type PlaceID string

// HourMap holds the occupancy percent for every hour of one day.
type HourMap [HoursPerDay]float64

// WeekHistogram holds one HourMap per weekday, indexed 0 = Sunday.
type WeekHistogram [DaysPerWeek]HourMap

// Place is a point of interest enriched with its popular times.
type Place struct {
	ID           PlaceID        `json:"place_id"`
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	Location     GeoPoint       `json:"location"`
	Types        []string       `json:"types"`
	Rating       float64        `json:"rating"`
	Reviews      int            `json:"reviews"`
	PopularTimes *WeekHistogram `json:"popular_times,omitempty"`
}

// HasPopularTimes reports whether a histogram was found for the place.
func (p Place) HasPopularTimes() bool {
	return p.PopularTimes != nil
}

func (p Place) String() string {
	return fmt.Sprintf("Place(id=%s, name=%s, address=%s, location=%s, rating=%.1f, reviews=%d)",
		p.ID, p.Name, p.Address, p.Location, p.Rating, p.Reviews)
}
