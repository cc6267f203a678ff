package service

import (
	"context"
	"sync"

	"populartimes-crawler/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// NearbySearcher is the part of the upstream client the finder needs
type NearbySearcher interface {
	NearbySearch(ctx context.Context, center models.GeoPoint, radiusMeters int, placeType, keyword string) ([]models.PlaceID, error)
}

// PlaceFinder collects the place IDs around a set of probe centers
type PlaceFinder struct {
	api     NearbySearcher
	workers int
}

// NewPlaceFinder creates a new place finder running at most workers probes at once
func NewPlaceFinder(api NearbySearcher, workers int) *PlaceFinder {
	if workers < 1 {
		workers = 1
	}
	return &PlaceFinder{api: api, workers: workers}
}

// Discover runs one Nearby Search per probe and returns the distinct place
// IDs found, in order of first discovery. A failing probe is logged and
// skipped. When ctx is cancelled no further probes start and the IDs found so
// far are returned.
func (f *PlaceFinder) Discover(ctx context.Context, probes []models.ProbeCenter, placeType, keyword string) []models.PlaceID {
	var (
		mu   sync.Mutex
		seen = make(map[models.PlaceID]struct{})
		ids  = make([]models.PlaceID, 0)
	)

	var g errgroup.Group
	g.SetLimit(f.workers)

	for _, probe := range probes {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			found, err := f.api.NearbySearch(ctx, probe.GeoPoint, probe.RadiusMeters, placeType, keyword)
			if err != nil {
				log.Warn().Err(err).
					Float64("lat", probe.Lat).
					Float64("lon", probe.Lon).
					Msg("skipping probe")
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, id := range found {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
			return nil
		})
	}

	_ = g.Wait()

	if ctx.Err() != nil {
		log.Warn().Err(ctx.Err()).Int("ids", len(ids)).Msg("discovery interrupted")
	}

	return ids
}
