package service

import (
	"context"
	"fmt"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/googleapi"
	"populartimes-crawler/internal/models"
)

// GeoCodeService resolves free-text location names to coordinates via map-search
type GeoCodeService struct {
	api       MapSearcher
	extractor *googleapi.PopularTimesExtractor
}

// MapSearcher interface for dependency injection
type MapSearcher interface {
	MapSearch(ctx context.Context, query string) (googleapi.Node, error)
}

// NewGeoCodeService creates a new geo code service
func NewGeoCodeService(api MapSearcher, extractor *googleapi.PopularTimesExtractor) *GeoCodeService {
	return &GeoCodeService{api: api, extractor: extractor}
}

// Geocode returns the point map-search resolves the location name to
func (s *GeoCodeService) Geocode(ctx context.Context, name string) (models.GeoPoint, error) {
	if name == "" {
		return models.GeoPoint{}, fmt.Errorf("%w: service: location name cannot be empty", apperr.ErrConfiguration)
	}

	data, err := s.api.MapSearch(ctx, name)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("service: failed to search location: %w", err)
	}

	point, err := s.extractor.Location(data)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("service: failed to resolve location: %w", err)
	}

	return point, nil
}
