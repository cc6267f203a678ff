// Package googleapitest provides payload builders and a fake upstream server
// for tests that exercise the Places and map-search clients.
package googleapitest

import (
	"github.com/goccy/go-json"
)

// PlaceEntry describes the parts of a map-search place entry a fixture fills in.
// Nil fields are emitted as JSON null.
type PlaceEntry struct {
	Rating  any
	Reviews any
	// Days is the list of [weekday, hours] entries; nil leaves info[84] null.
	Days []any
	// NoRatingBlock leaves info[4] null.
	NoRatingBlock bool
}

// Day builds a [weekday, hours] entry; pass nil hours for a closed day.
func Day(weekday int, hours []any) []any {
	if hours == nil {
		return []any{weekday, nil}
	}
	return []any{weekday, hours}
}

// Hours builds an hour list from alternating hour and percent values.
func Hours(pairs ...int) []any {
	out := make([]any, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, []any{pairs[i], pairs[i+1], "", ""})
	}
	return out
}

// PlaceData builds a positional payload whose data[0][1][0][14] is the info
// array described by e.
func PlaceData(e PlaceEntry) []any {
	info := make([]any, 90)
	if !e.NoRatingBlock {
		ratingBlock := make([]any, 10)
		ratingBlock[7] = e.Rating
		ratingBlock[8] = e.Reviews
		info[4] = ratingBlock
	}
	if e.Days != nil {
		info[84] = []any{e.Days, nil}
	}

	entry := make([]any, 20)
	entry[14] = info

	return []any{[]any{"query", []any{entry}}}
}

// ShortEntryData builds a payload whose place entry is too short to carry info.
func ShortEntryData() []any {
	return []any{[]any{"query", []any{make([]any, 11)}}}
}

// LocationData builds a payload for a location-name query. The coordinates
// are stored longitude first, as upstream does.
func LocationData(lat, lon float64) []any {
	return []any{nil, []any{[]any{"", lon, lat}}}
}

// SearchBody wraps data the way the map-search endpoint does: a JSON envelope
// whose "d" field holds the prefixed payload, followed by trailing markup.
func SearchBody(data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	env, err := json.Marshal(map[string]any{
		"c": 0,
		"d": ")]}'" + string(payload),
		"e": "hSBlZ",
	})
	if err != nil {
		panic(err)
	}
	return append(env, []byte(`/*""*/<script>var x = 1;</script>`)...)
}
