package service

import (
	"context"
	"fmt"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/geo"
	"populartimes-crawler/internal/googleapi"
	"populartimes-crawler/internal/models"

	"github.com/rs/zerolog/log"
)

// PlacesAPI is the upstream client the crawler is built on
type PlacesAPI interface {
	NearbySearcher
	DetailsSearcher
}

// PlaceStore receives every crawl result when configured
type PlaceStore interface {
	SavePlaces(ctx context.Context, places []models.Place) error
}

// CrawlerOptions holds the crawl parameters shared by all entry points
type CrawlerOptions struct {
	PlaceType               string
	RadiusMeters            int
	Keyword                 string
	PostFilter              bool
	IncludeWithoutHistogram bool
	ProbeWorkers            int
	EnrichWorkers           int
}

// CrawlerService runs the discovery and enrichment pipeline
type CrawlerService struct {
	finder   *PlaceFinder
	enricher *PlaceEnricher
	geocoder *GeoCodeService
	store    PlaceStore
	opts     CrawlerOptions
}

// NewCrawlerService creates a new crawler service. store may be nil.
func NewCrawlerService(api PlacesAPI, extractor *googleapi.PopularTimesExtractor, store PlaceStore, opts CrawlerOptions) *CrawlerService {
	return &CrawlerService{
		finder: NewPlaceFinder(api, opts.ProbeWorkers),
		enricher: NewPlaceEnricher(api, extractor, EnrichOptions{
			Keyword:                 opts.Keyword,
			PostFilter:              opts.PostFilter,
			IncludeWithoutHistogram: opts.IncludeWithoutHistogram,
			Workers:                 opts.EnrichWorkers,
		}),
		geocoder: NewGeoCodeService(api, extractor),
		store:    store,
		opts:     opts,
	}
}

// FromFrame crawls every place within the rectangle. A non-positive radius
// falls back to the configured one.
func (s *CrawlerService) FromFrame(ctx context.Context, bounds geo.Bounds, radiusMeters int) ([]models.Place, error) {
	radiusMeters, err := s.searchRadius(radiusMeters)
	if err != nil {
		return nil, err
	}
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	centers := geo.Tile(bounds.Min, bounds.Max, radiusMeters)
	log.Info().Int("centers", len(centers)).Int("radius_m", radiusMeters).Msg("starting radial search")

	if gap := geo.CoverageGap(bounds, centers); gap > float64(radiusMeters) {
		log.Warn().Float64("gap_m", gap).Int("radius_m", radiusMeters).Msg("tiling leaves parts of the frame unsearched")
	}

	ids := s.finder.Discover(ctx, geo.Probes(centers, radiusMeters), s.opts.PlaceType, s.opts.Keyword)
	log.Info().Int("ids", len(ids)).Msg("places to process")

	return s.finish(ctx, s.enricher.Enrich(ctx, ids)), nil
}

// FromID enriches a single place. It returns nil without error when the place
// was dropped by the keyword filter or has no popular times. Upstream and
// payload failures are returned.
func (s *CrawlerService) FromID(ctx context.Context, id models.PlaceID) (*models.Place, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: service: place id cannot be empty", apperr.ErrConfiguration)
	}

	place, err := s.enricher.EnrichOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to crawl place %s: %w", id, err)
	}
	if place == nil {
		return nil, nil
	}

	s.finish(ctx, []models.Place{*place})
	return place, nil
}

// FromLocationName resolves name to a point and crawls the places around it.
func (s *CrawlerService) FromLocationName(ctx context.Context, name string, radiusMeters int) ([]models.Place, error) {
	radiusMeters, err := s.searchRadius(radiusMeters)
	if err != nil {
		return nil, err
	}

	point, err := s.geocoder.Geocode(ctx, name)
	if err != nil {
		if apperr.Fatal(err) {
			return nil, err
		}
		log.Warn().Err(err).Str("name", name).Msg("could not resolve location")
		return []models.Place{}, nil
	}
	if !point.Valid() {
		log.Warn().Str("name", name).Float64("lat", point.Lat).Float64("lon", point.Lon).Msg("location resolved outside coordinate range")
		return []models.Place{}, nil
	}
	log.Info().Str("name", name).Float64("lat", point.Lat).Float64("lon", point.Lon).Msg("resolved location")

	probe := models.ProbeCenter{GeoPoint: point, RadiusMeters: radiusMeters}
	ids := s.finder.Discover(ctx, []models.ProbeCenter{probe}, s.opts.PlaceType, s.opts.Keyword)

	return s.finish(ctx, s.enricher.Enrich(ctx, ids)), nil
}

func (s *CrawlerService) searchRadius(radiusMeters int) (int, error) {
	if s.opts.PlaceType == "" {
		return 0, fmt.Errorf("%w: service: place type is required", apperr.ErrConfiguration)
	}
	if radiusMeters <= 0 {
		radiusMeters = s.opts.RadiusMeters
	}
	if radiusMeters <= 0 {
		return 0, fmt.Errorf("%w: service: radius must be positive", apperr.ErrConfiguration)
	}
	return radiusMeters, nil
}

// finish hands the places to the store, if any. Store failures are logged only.
func (s *CrawlerService) finish(ctx context.Context, places []models.Place) []models.Place {
	if s.store == nil || len(places) == 0 {
		return places
	}

	// a cancelled crawl still stores what it found
	if err := s.store.SavePlaces(context.WithoutCancel(ctx), places); err != nil {
		log.Error().Err(err).Int("places", len(places)).Msg("failed to store places")
	}
	return places
}
