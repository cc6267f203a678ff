package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/geo"
	"populartimes-crawler/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCrawlService is a mock implementation of the CrawlService interface
type MockCrawlService struct {
	mock.Mock
}

func (m *MockCrawlService) FromFrame(ctx context.Context, bounds geo.Bounds, radius int) ([]models.Place, error) {
	args := m.Called(ctx, bounds, radius)
	return args.Get(0).([]models.Place), args.Error(1)
}

func (m *MockCrawlService) FromLocationName(ctx context.Context, name string, radius int) ([]models.Place, error) {
	args := m.Called(ctx, name, radius)
	return args.Get(0).([]models.Place), args.Error(1)
}

func frameQuery(minLat, minLon, maxLat, maxLon, radius string) url.Values {
	q := url.Values{}
	for k, v := range map[string]string{
		"min_lat": minLat,
		"min_lon": minLon,
		"max_lat": maxLat,
		"max_lon": maxLon,
		"radius":  radius,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func TestCrawlHandler_Frame(t *testing.T) {
	gin.SetMode(gin.TestMode)

	bounds := geo.Bounds{
		Min: models.GeoPoint{Lat: 48.0, Lon: 7.0},
		Max: models.GeoPoint{Lat: 48.001, Lon: 7.001},
	}

	tests := []struct {
		name           string
		query          url.Values
		expectCall     bool
		expectedRadius int
		mockPlaces     []models.Place
		mockError      error
		expectedStatus int
		expectedPlaces []models.Place
		expectedError  string
	}{
		{
			name:           "missing corner",
			query:          frameQuery("48.0", "7.0", "48.001", "", ""),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "missing required query parameters 'min_lat', 'min_lon', 'max_lat' and 'max_lon'",
		},
		{
			name:           "invalid latitude",
			query:          frameQuery("north", "7.0", "48.001", "7.001", ""),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid min_lat format",
		},
		{
			name:           "invalid radius",
			query:          frameQuery("48.0", "7.0", "48.001", "7.001", "-5"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid radius format",
		},
		{
			name:           "configured radius",
			query:          frameQuery("48.0", "7.0", "48.001", "7.001", ""),
			expectCall:     true,
			expectedRadius: 0,
			mockPlaces:     []models.Place{*cafe()},
			expectedStatus: http.StatusOK,
			expectedPlaces: []models.Place{*cafe()},
		},
		{
			name:           "explicit radius without results",
			query:          frameQuery("48.0", "7.0", "48.001", "7.001", "250"),
			expectCall:     true,
			expectedRadius: 250,
			mockPlaces:     nil,
			expectedStatus: http.StatusOK,
			expectedPlaces: []models.Place{},
		},
		{
			name:           "invalid bounds",
			query:          frameQuery("48.0", "7.0", "48.001", "7.001", ""),
			expectCall:     true,
			mockError:      fmt.Errorf("service: %w: empty frame", apperr.ErrConfiguration),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "service: configuration error: empty frame",
		},
		{
			name:           "service error",
			query:          frameQuery("48.0", "7.0", "48.001", "7.001", ""),
			expectCall:     true,
			mockError:      assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockSvc := new(MockCrawlService)
			handler := NewCrawlHandler(mockSvc)

			if tt.expectCall {
				mockSvc.On("FromFrame", mock.Anything, bounds, tt.expectedRadius).Return(tt.mockPlaces, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/crawl/frame?"+tt.query.Encode(), nil)
			w := httptest.NewRecorder()

			c, _ := gin.CreateTestContext(w)
			c.Request = req

			// Execute
			handler.Frame(c)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorBody(t, w, tt.expectedError)
			} else {
				var actual []models.Place
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actual))
				assert.Equal(t, tt.expectedPlaces, actual)
			}

			mockSvc.AssertExpectations(t)
		})
	}
}

func TestCrawlHandler_Location(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		query          string
		radius         string
		expectCall     bool
		expectedRadius int
		mockPlaces     []models.Place
		mockError      error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "missing query parameter",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "missing required query parameter 'q'",
		},
		{
			name:           "invalid radius",
			query:          "Wuppertal",
			radius:         "wide",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid radius format",
		},
		{
			name:           "resolved location",
			query:          "Wuppertal",
			radius:         "1000",
			expectCall:     true,
			expectedRadius: 1000,
			mockPlaces:     []models.Place{*cafe()},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "service error",
			query:          "Wuppertal",
			expectCall:     true,
			mockError:      assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockCrawlService)
			handler := NewCrawlHandler(mockSvc)

			if tt.expectCall {
				mockSvc.On("FromLocationName", mock.Anything, tt.query, tt.expectedRadius).Return(tt.mockPlaces, tt.mockError)
			}

			q := url.Values{}
			if tt.query != "" {
				q.Set("q", tt.query)
			}
			if tt.radius != "" {
				q.Set("radius", tt.radius)
			}
			w := httptest.NewRecorder()

			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/crawl/location?"+q.Encode(), nil)

			handler.Location(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorBody(t, w, tt.expectedError)
			} else {
				var actual []models.Place
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actual))
				assert.Equal(t, tt.mockPlaces, actual)
			}

			mockSvc.AssertExpectations(t)
		})
	}
}
