package googleapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/models"

	"github.com/goccy/go-json"
)

const (
	nearbyPath          = "/nearbysearch/json?location=%s,%s&radius=%s&type=%s&keyword=%s&key=%s"
	nearbyPathNoKeyword = "/nearbysearch/json?location=%s,%s&radius=%s&type=%s&key=%s"
	detailsPath         = "/details/json?placeid=%s&key=%s"

	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// NearbySearchResponse is the first page of a Nearby Search.
// NextPageToken is decoded but never followed.
type NearbySearchResponse struct {
	Results       []PlaceResult `json:"results"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
	NextPageToken string        `json:"next_page_token"`
}

// DetailsResponse is the body of a Place Details request.
type DetailsResponse struct {
	Result       *PlaceResult `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

// PlaceResult holds the subset of place fields the crawler reads.
type PlaceResult struct {
	PlaceID          string    `json:"place_id"`
	Name             string    `json:"name"`
	FormattedAddress string    `json:"formatted_address"`
	Geometry         *Geometry `json:"geometry"`
	Types            []string  `json:"types"`
}

type Geometry struct {
	Location *Location `json:"location"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceDetails is the metadata of a single place as returned by Place Details.
type PlaceDetails struct {
	ID       models.PlaceID
	Name     string
	Address  string
	Location models.GeoPoint
	Types    []string
}

// NearbySearch returns the place IDs on the first result page around center.
// An empty keyword omits the keyword parameter.
func (c *Client) NearbySearch(ctx context.Context, center models.GeoPoint, radiusMeters int, placeType, keyword string) ([]models.PlaceID, error) {
	lat := url.QueryEscape(strconv.FormatFloat(center.Lat, 'f', -1, 64))
	lon := url.QueryEscape(strconv.FormatFloat(center.Lon, 'f', -1, 64))
	radius := url.QueryEscape(strconv.Itoa(radiusMeters))

	var rawURL string
	if keyword != "" {
		rawURL = c.placesBaseURL + fmt.Sprintf(nearbyPath, lat, lon, radius,
			url.QueryEscape(placeType), url.QueryEscape(keyword), url.QueryEscape(c.apiKey))
	} else {
		rawURL = c.placesBaseURL + fmt.Sprintf(nearbyPathNoKeyword, lat, lon, radius,
			url.QueryEscape(placeType), url.QueryEscape(c.apiKey))
	}

	body, err := c.get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	var resp NearbySearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: googleapi: failed to parse nearby search response: %v", apperr.ErrPayloadShape, err)
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage, true); err != nil {
		return nil, err
	}

	ids := make([]models.PlaceID, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.PlaceID == "" {
			continue
		}
		ids = append(ids, models.PlaceID(r.PlaceID))
	}

	return ids, nil
}

// Details fetches the metadata of a single place.
func (c *Client) Details(ctx context.Context, id models.PlaceID) (*PlaceDetails, error) {
	rawURL := c.placesBaseURL + fmt.Sprintf(detailsPath, url.QueryEscape(string(id)), url.QueryEscape(c.apiKey))

	body, err := c.get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	var resp DetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: googleapi: failed to parse details response: %v", apperr.ErrPayloadShape, err)
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage, false); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: googleapi: details response has no result", apperr.ErrPayloadShape)
	}

	r := resp.Result
	if r.Name == "" {
		return nil, fmt.Errorf("%w: googleapi: details result has no name", apperr.ErrPayloadShape)
	}
	if r.FormattedAddress == "" {
		return nil, fmt.Errorf("%w: googleapi: details result has no formatted_address", apperr.ErrPayloadShape)
	}
	if r.Geometry == nil || r.Geometry.Location == nil {
		return nil, fmt.Errorf("%w: googleapi: details result has no geometry.location", apperr.ErrPayloadShape)
	}
	types := r.Types
	if types == nil {
		types = []string{}
	}

	return &PlaceDetails{
		ID:       id,
		Name:     r.Name,
		Address:  r.FormattedAddress,
		Location: models.GeoPoint{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng},
		Types:    types,
	}, nil
}

// checkStatus maps a provider status to an error. A missing status is accepted.
func checkStatus(status, message string, allowZero bool) error {
	switch {
	case status == "" || status == StatusOK:
		return nil
	case allowZero && status == StatusZeroResults:
		return nil
	case message != "":
		return fmt.Errorf("%w: googleapi: status %s: %s", apperr.ErrUpstream, status, message)
	default:
		return fmt.Errorf("%w: googleapi: status %s", apperr.ErrUpstream, status)
	}
}
