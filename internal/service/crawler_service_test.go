package service

import (
	"context"
	"testing"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/geo"
	"populartimes-crawler/internal/googleapi"
	"populartimes-crawler/internal/googleapi/googleapitest"
	"populartimes-crawler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPlaceStore is a mock implementation of the PlaceStore interface
type MockPlaceStore struct {
	mock.Mock
}

// SavePlaces implements PlaceStore.
func (m *MockPlaceStore) SavePlaces(ctx context.Context, places []models.Place) error {
	args := m.Called(ctx, places)
	return args.Error(0)
}

const (
	cafeAddress  = "Hauptstraße 1, 42103 Wuppertal"
	pizzaAddress = "Neumarkt 2, 42103 Wuppertal"
)

func newUpstream(t *testing.T) *googleapitest.Server {
	t.Helper()
	srv := googleapitest.NewServer()
	t.Cleanup(srv.Close)

	srv.AddNearby(googleapitest.Location(48, 7), "A", "B", "A", "C")
	srv.AddNearby(googleapitest.Location(51.25, 7.15), "A")

	srv.AddDetails("A", "Café X", cafeAddress, 48.0004, 7.0003, "cafe", "food")
	srv.AddDetails("B", "Pizza Y", pizzaAddress, 48.0007, 7.0008, "restaurant")
	srv.SetDetailsResponse("C", map[string]any{"status": "OK", "result": map[string]any{"name": "Café Z"}})

	srv.AddSearch("Café X "+cafeAddress, googleapitest.SearchBody(googleapitest.PlaceData(googleapitest.PlaceEntry{
		Rating:  4.6,
		Reviews: 87,
		Days:    []any{googleapitest.Day(1, googleapitest.Hours(9, 20, 10, 35))},
	})))
	srv.AddSearch("Pizza Y "+pizzaAddress, googleapitest.SearchBody(googleapitest.PlaceData(googleapitest.PlaceEntry{
		Rating:  4.1,
		Reviews: 12,
	})))
	srv.AddSearch("Wuppertal-Elberfeld", googleapitest.SearchBody(googleapitest.LocationData(51.25, 7.15)))
	srv.AddSearch("Nowhere", googleapitest.SearchBody(googleapitest.LocationData(123, 7.15)))

	return srv
}

func newCrawler(srv *googleapitest.Server, store PlaceStore, opts CrawlerOptions) *CrawlerService {
	client := googleapi.NewClient(googleapi.Options{
		APIKey:        "test-key",
		PlacesBaseURL: srv.PlacesBaseURL(),
		SearchBaseURL: srv.SearchBaseURL(),
	})
	return NewCrawlerService(client, googleapi.NewPopularTimesExtractor(googleapi.DefaultLayout), store, opts)
}

func expectedCafe() models.Place {
	return models.Place{
		ID:           "A",
		Name:         "Café X",
		Address:      cafeAddress,
		Location:     models.GeoPoint{Lat: 48.0004, Lon: 7.0003},
		Types:        []string{"cafe", "food"},
		Rating:       4.6,
		Reviews:      87,
		PopularTimes: mondayHistogram(),
	}
}

func TestCrawlerService_FromFrame(t *testing.T) {
	frame := geo.Bounds{Min: models.GeoPoint{Lat: 48.0, Lon: 7.0}, Max: models.GeoPoint{Lat: 48.001, Lon: 7.001}}

	tests := []struct {
		name        string
		opts        CrawlerOptions
		bounds      geo.Bounds
		expectedIDs []models.PlaceID
		expectError error
	}{
		{
			name:        "places without popular times are dropped",
			opts:        CrawlerOptions{PlaceType: "restaurant", RadiusMeters: 500},
			bounds:      frame,
			expectedIDs: []models.PlaceID{"A"},
		},
		{
			name:        "places without popular times are kept on request",
			opts:        CrawlerOptions{PlaceType: "restaurant", RadiusMeters: 500, IncludeWithoutHistogram: true, ProbeWorkers: 2, EnrichWorkers: 2},
			bounds:      frame,
			expectedIDs: []models.PlaceID{"A", "B"},
		},
		{
			name:        "post filter",
			opts:        CrawlerOptions{PlaceType: "restaurant", RadiusMeters: 500, Keyword: "pizza", PostFilter: true, IncludeWithoutHistogram: true},
			bounds:      frame,
			expectedIDs: []models.PlaceID{"B"},
		},
		{
			name:        "missing place type",
			opts:        CrawlerOptions{RadiusMeters: 500},
			bounds:      frame,
			expectError: apperr.ErrConfiguration,
		},
		{
			name:        "missing radius",
			opts:        CrawlerOptions{PlaceType: "restaurant"},
			bounds:      frame,
			expectError: apperr.ErrConfiguration,
		},
		{
			name:        "invalid bounds",
			opts:        CrawlerOptions{PlaceType: "restaurant", RadiusMeters: 500},
			bounds:      geo.Bounds{Min: frame.Max, Max: frame.Min},
			expectError: apperr.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newUpstream(t)
			crawler := newCrawler(srv, nil, tt.opts)

			places, err := crawler.FromFrame(context.Background(), tt.bounds, 0)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Zero(t, srv.Calls("nearby"))
				return
			}
			require.NoError(t, err)

			ids := make([]models.PlaceID, 0, len(places))
			seen := map[models.PlaceID]bool{}
			for _, p := range places {
				assert.False(t, seen[p.ID], "duplicate place %s", p.ID)
				seen[p.ID] = true
				ids = append(ids, p.ID)
			}
			assert.ElementsMatch(t, tt.expectedIDs, ids)
		})
	}
}

func TestCrawlerService_FromFrame_Stores(t *testing.T) {
	srv := newUpstream(t)
	store := new(MockPlaceStore)
	store.On("SavePlaces", mock.Anything, []models.Place{expectedCafe()}).Return(assert.AnError)

	crawler := newCrawler(srv, store, CrawlerOptions{PlaceType: "restaurant", RadiusMeters: 500})
	frame := geo.Bounds{Min: models.GeoPoint{Lat: 48.0, Lon: 7.0}, Max: models.GeoPoint{Lat: 48.001, Lon: 7.001}}

	places, err := crawler.FromFrame(context.Background(), frame, 500)

	require.NoError(t, err, "store failures do not fail the crawl")
	assert.Equal(t, []models.Place{expectedCafe()}, places)
	store.AssertExpectations(t)
}

func TestCrawlerService_FromID(t *testing.T) {
	srv := newUpstream(t)
	crawler := newCrawler(srv, nil, CrawlerOptions{})

	place, err := crawler.FromID(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Equal(t, expectedCafe(), *place)

	_, err = crawler.FromID(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
	assert.Equal(t, 1, srv.Calls("details"), "an empty id issues no request")

	tests := []struct {
		name        string
		id          models.PlaceID
		expectedErr error
	}{
		{name: "no popular times", id: "B"},
		{name: "unknown place", id: "unknown", expectedErr: apperr.ErrUpstream},
		{name: "details without address and location", id: "C", expectedErr: apperr.ErrPayloadShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			place, err := crawler.FromID(context.Background(), tt.id)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
			assert.Nil(t, place)
		})
	}
}

func TestCrawlerService_FromLocationName(t *testing.T) {
	srv := newUpstream(t)
	crawler := newCrawler(srv, nil, CrawlerOptions{PlaceType: "cafe", RadiusMeters: 250})

	places, err := crawler.FromLocationName(context.Background(), "Wuppertal-Elberfeld", 0)
	require.NoError(t, err)
	assert.Equal(t, []models.Place{expectedCafe()}, places)

	places, err = crawler.FromLocationName(context.Background(), "Atlantis", 0)
	require.NoError(t, err)
	assert.Empty(t, places)

	places, err = crawler.FromLocationName(context.Background(), "Nowhere", 0)
	require.NoError(t, err)
	assert.Empty(t, places)
	assert.Equal(t, 1, srv.Calls("nearby"), "no probe is built from an out of range point")

	_, err = crawler.FromLocationName(context.Background(), "", 0)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}
