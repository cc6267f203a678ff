package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/googleapi"
	"populartimes-crawler/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DetailsSearcher is the part of the upstream client the enricher needs
type DetailsSearcher interface {
	Details(ctx context.Context, id models.PlaceID) (*googleapi.PlaceDetails, error)
	MapSearch(ctx context.Context, query string) (googleapi.Node, error)
}

// EnrichOptions controls which places survive enrichment
type EnrichOptions struct {
	// Keyword together with PostFilter drops places whose name does not contain it.
	Keyword    string
	PostFilter bool
	// IncludeWithoutHistogram keeps places that have no popular times.
	IncludeWithoutHistogram bool
	Workers                 int
}

// PlaceEnricher turns place IDs into places carrying their popular times
type PlaceEnricher struct {
	api       DetailsSearcher
	extractor *googleapi.PopularTimesExtractor
	opts      EnrichOptions
}

// NewPlaceEnricher creates a new place enricher
func NewPlaceEnricher(api DetailsSearcher, extractor *googleapi.PopularTimesExtractor, opts EnrichOptions) *PlaceEnricher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &PlaceEnricher{api: api, extractor: extractor, opts: opts}
}

var errFiltered = errors.New("name does not match keyword")

// Enrich fetches details and popular times for every distinct ID. The result
// keeps the input order minus the places that were dropped. A failure on one
// ID only drops that place. When ctx is cancelled the places enriched so far
// are returned.
func (e *PlaceEnricher) Enrich(ctx context.Context, ids []models.PlaceID) []models.Place {
	ids = distinct(ids)
	slots := make([]*models.Place, len(ids))

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)

	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			place, err := e.enrichOne(ctx, id)
			if err != nil {
				logDrop(id, err)
				return nil
			}
			slots[i] = place
			return nil
		})
	}

	_ = g.Wait()

	places := make([]models.Place, 0, len(ids))
	for _, p := range slots {
		if p != nil {
			places = append(places, *p)
		}
	}

	if ctx.Err() != nil {
		log.Warn().Err(ctx.Err()).Int("places", len(places)).Msg("enrichment interrupted")
	}

	return places
}

// EnrichOne enriches a single place. It returns nil without error when the
// place is dropped by the keyword filter or for lack of popular times; every
// other failure is returned.
func (e *PlaceEnricher) EnrichOne(ctx context.Context, id models.PlaceID) (*models.Place, error) {
	place, err := e.enrichOne(ctx, id)
	if err != nil {
		logDrop(id, err)
		if errors.Is(err, errFiltered) || errors.Is(err, apperr.ErrPartialData) {
			return nil, nil
		}
		return nil, err
	}
	return place, nil
}

func (e *PlaceEnricher) enrichOne(ctx context.Context, id models.PlaceID) (*models.Place, error) {
	details, err := e.api.Details(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch details: %w", err)
	}

	if !e.keep(details.Name) {
		return nil, errFiltered
	}

	data, err := e.api.MapSearch(ctx, details.Name+" "+details.Address)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch search payload: %w", err)
	}

	extraction, err := e.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("service: failed to extract popular times: %w", err)
	}

	log.Debug().Str("name", details.Name).Str("address", details.Address).Msg("enriched place")

	if extraction.PopularTimes == nil {
		if !e.opts.IncludeWithoutHistogram {
			return nil, fmt.Errorf("%w: no information on popular times available", apperr.ErrPartialData)
		}
		log.Info().Str("place_id", string(id)).Msg("no information on popular times available")
	}

	types := details.Types
	if types == nil {
		types = []string{}
	}

	return &models.Place{
		ID:           id,
		Name:         details.Name,
		Address:      details.Address,
		Location:     details.Location,
		Types:        types,
		Rating:       extraction.Rating,
		Reviews:      extraction.Reviews,
		PopularTimes: extraction.PopularTimes,
	}, nil
}

// keep applies the keyword post-filter to a place name.
func (e *PlaceEnricher) keep(name string) bool {
	if !e.opts.PostFilter || e.opts.Keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(e.opts.Keyword))
}

func logDrop(id models.PlaceID, err error) {
	switch {
	case errors.Is(err, errFiltered):
		log.Info().Str("place_id", string(id)).Msg("skipped due to filter settings")
	case errors.Is(err, apperr.ErrPartialData):
		log.Info().Str("place_id", string(id)).Err(err).Msg("dropping place")
	default:
		log.Warn().Str("place_id", string(id)).Err(err).Msg("skipping place")
	}
}

func distinct(ids []models.PlaceID) []models.PlaceID {
	seen := make(map[models.PlaceID]struct{}, len(ids))
	out := make([]models.PlaceID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
