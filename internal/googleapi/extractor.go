package googleapi

import (
	"fmt"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/models"

	"github.com/rs/zerolog/log"
)

// Layout describes where fields live inside the positional map-search payload.
// The indices are tied to a snapshot of the upstream HTML and change when it does.
type Layout struct {
	// EntryPath leads from the payload root to the place entry.
	EntryPath []int
	// MinEntryLen is the length a place entry must exceed to carry place info.
	MinEntryLen int
	// InfoIndex is the index of the info array inside the place entry.
	InfoIndex int

	RatingPath  []int
	ReviewsPath []int

	// PopularTimesIndex is the index of the popular-times block inside info;
	// its first element is the list of days.
	PopularTimesIndex int

	// LocationPath leads to the entry a location name resolves to,
	// whose LatIndex and LonIndex elements hold the coordinates.
	LocationPath []int
	LatIndex     int
	LonIndex     int
}

// DefaultLayout matches the payload served to the mobile user agent.
var DefaultLayout = Layout{
	EntryPath:         []int{0, 1, 0},
	MinEntryLen:       11,
	InfoIndex:         14,
	RatingPath:        []int{4, 7},
	ReviewsPath:       []int{4, 8},
	PopularTimesIndex: 84,
	LocationPath:      []int{1, 0},
	LatIndex:          2,
	LonIndex:          1,
}

// Extraction is what a map-search payload reveals about a place.
type Extraction struct {
	Rating       float64
	Reviews      int
	PopularTimes *models.WeekHistogram
}

// PopularTimesExtractor reads ratings, review counts, popular times and
// coordinates out of map-search payloads.
type PopularTimesExtractor struct {
	layout Layout
}

// NewPopularTimesExtractor creates an extractor for the given payload layout
func NewPopularTimesExtractor(layout Layout) *PopularTimesExtractor {
	return &PopularTimesExtractor{layout: layout}
}

// Extract reads the place info of a payload. A payload without a place entry
// is a shape error; a place entry without popular times yields an Extraction
// whose PopularTimes is nil.
func (e *PopularTimesExtractor) Extract(data Node) (Extraction, error) {
	res := Extraction{Rating: models.UnknownRating, Reviews: models.UnknownReviews}

	entry := data.Path(e.layout.EntryPath...)
	if entry.Len() <= e.layout.MinEntryLen {
		return res, fmt.Errorf("%w: googleapi: no place entry in search payload", apperr.ErrPayloadShape)
	}

	info := entry.Index(e.layout.InfoIndex)
	if _, ok := info.Array(); !ok {
		return res, fmt.Errorf("%w: googleapi: place entry has no info array", apperr.ErrPayloadShape)
	}

	if rating, ok := info.Path(e.layout.RatingPath...).Float(); ok {
		res.Rating = rating
	}
	if reviews, ok := info.Path(e.layout.ReviewsPath...).Int(); ok {
		res.Reviews = int(reviews)
	}

	block := info.Index(e.layout.PopularTimesIndex)
	if !block.Present() {
		return res, nil
	}

	days := block.Index(0)
	if _, ok := days.Array(); !ok {
		return res, fmt.Errorf("%w: googleapi: popular times block has no day list", apperr.ErrPayloadShape)
	}

	hist, err := MapHistogram(days)
	if err != nil {
		return res, err
	}
	res.PopularTimes = &hist

	return res, nil
}

// Location reads the coordinates a location-name query resolved to. The
// payload stores longitude before latitude.
func (e *PopularTimesExtractor) Location(data Node) (models.GeoPoint, error) {
	entry := data.Path(e.layout.LocationPath...)

	lat, latOK := entry.Index(e.layout.LatIndex).Float()
	lon, lonOK := entry.Index(e.layout.LonIndex).Float()
	if !latOK || !lonOK {
		return models.GeoPoint{}, fmt.Errorf("%w: googleapi: search payload has no coordinates", apperr.ErrPayloadShape)
	}

	return models.GeoPoint{Lat: lat, Lon: lon}, nil
}

// MapHistogram normalises a list of [weekday, hours] day entries into a full
// week. Days missing from the list and days whose hours are null stay zero.
// Weekday 7 is folded onto Sunday.
func MapHistogram(days Node) (models.WeekHistogram, error) {
	var week models.WeekHistogram

	entries, ok := days.Array()
	if !ok {
		return week, fmt.Errorf("%w: googleapi: day list is not an array", apperr.ErrPayloadShape)
	}

	for i := range entries {
		day := days.Index(i)

		idx, ok := day.Index(0).Int()
		if !ok {
			return week, fmt.Errorf("%w: googleapi: day entry %d has no weekday", apperr.ErrPayloadShape, i)
		}
		if idx == models.DaysPerWeek {
			idx = 0
		}
		if idx < 0 || idx >= models.DaysPerWeek {
			return week, fmt.Errorf("%w: googleapi: weekday %d out of range", apperr.ErrPayloadShape, idx)
		}

		hours := day.Index(1)
		if !hours.Present() {
			log.Debug().Int64("day", idx).Msg("day is closed or not enough data available")
			week[idx] = models.HourMap{}
			continue
		}

		hourMap, err := mapHours(hours)
		if err != nil {
			return week, fmt.Errorf("day %d: %w", idx, err)
		}
		week[idx] = hourMap
	}

	return week, nil
}

func mapHours(hours Node) (models.HourMap, error) {
	var hm models.HourMap

	entries, ok := hours.Array()
	if !ok {
		return hm, fmt.Errorf("%w: googleapi: hour list is not an array", apperr.ErrPayloadShape)
	}

	for i := range entries {
		entry := hours.Index(i)

		h, ok := entry.Index(0).Int()
		if !ok {
			return hm, fmt.Errorf("%w: googleapi: hour entry %d has no hour", apperr.ErrPayloadShape, i)
		}
		p, ok := entry.Index(1).Float()
		if !ok {
			return hm, fmt.Errorf("%w: googleapi: hour entry %d has no occupancy", apperr.ErrPayloadShape, i)
		}

		if h < 0 || h >= models.HoursPerDay {
			log.Debug().Int64("hour", h).Msg("skipping hour outside of day")
			continue
		}
		hm[h] = clamp(p, 0, models.MaxOccupancy)
	}

	return hm, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
