package service

import (
	"context"
	"testing"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/googleapi"
	"populartimes-crawler/internal/googleapi/googleapitest"
	"populartimes-crawler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMapSearcher is a mock implementation of the MapSearcher interface
type MockMapSearcher struct {
	mock.Mock
}

// MapSearch implements MapSearcher.
func (m *MockMapSearcher) MapSearch(ctx context.Context, query string) (googleapi.Node, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(googleapi.Node), args.Error(1)
}

func searchNode(t *testing.T, data []any) googleapi.Node {
	t.Helper()
	node, err := googleapi.ParseSearchResponse(googleapitest.SearchBody(data))
	require.NoError(t, err)
	return node
}

func TestGeoCodeService_Geocode(t *testing.T) {
	tests := []struct {
		name        string
		location    string
		mockNode    googleapi.Node
		mockError   error
		expected    models.GeoPoint
		expectError error
	}{
		{
			name:        "empty name",
			location:    "",
			expectError: apperr.ErrConfiguration,
		},
		{
			name:     "longitude precedes latitude in the payload",
			location: "Wuppertal-Elberfeld",
			mockNode: searchNode(t, googleapitest.LocationData(51.2562, 7.1508)),
			expected: models.GeoPoint{Lat: 51.2562, Lon: 7.1508},
		},
		{
			name:        "payload without location",
			location:    "nowhere",
			mockNode:    searchNode(t, []any{nil, nil}),
			expectError: apperr.ErrPayloadShape,
		},
		{
			name:        "upstream error",
			location:    "Wuppertal-Elberfeld",
			mockNode:    googleapi.Node{},
			mockError:   apperr.ErrTransport,
			expectError: apperr.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockAPI := new(MockMapSearcher)
			service := NewGeoCodeService(mockAPI, googleapi.NewPopularTimesExtractor(googleapi.DefaultLayout))

			if tt.location != "" {
				mockAPI.On("MapSearch", mock.Anything, tt.location).Return(tt.mockNode, tt.mockError)
			}

			// Execute
			result, err := service.Geocode(context.Background(), tt.location)

			// Assert
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}

			if tt.location != "" {
				mockAPI.AssertExpectations(t)
			}
		})
	}
}
