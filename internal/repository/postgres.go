package repository

import (
	"context"
	"errors"
	"fmt"

	"populartimes-crawler/internal/models"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores crawled places in PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const schema = `
	CREATE TABLE IF NOT EXISTS places (
		place_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		types TEXT[] NOT NULL DEFAULT '{}',
		rating DOUBLE PRECISION NOT NULL,
		reviews INTEGER NOT NULL,
		popular_times JSONB,
		crawled_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

const upsertPlace = `
	INSERT INTO places (place_id, name, address, latitude, longitude, types, rating, reviews, popular_times)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (place_id) DO UPDATE SET
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		types = EXCLUDED.types,
		rating = EXCLUDED.rating,
		reviews = EXCLUDED.reviews,
		popular_times = EXCLUDED.popular_times,
		crawled_at = now()
`

// CreateSchema creates the places table if it does not exist yet
func (r *Repository) CreateSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// SavePlaces upserts the places in a single batch
func (r *Repository) SavePlaces(ctx context.Context, places []models.Place) error {
	if len(places) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range places {
		var popularTimes []byte
		if p.HasPopularTimes() {
			var err error
			popularTimes, err = json.Marshal(p.PopularTimes)
			if err != nil {
				return fmt.Errorf("repository: failed to encode popular times of %s: %w", p.ID, err)
			}
		}

		batch.Queue(upsertPlace,
			string(p.ID),
			p.Name,
			p.Address,
			p.Location.Lat,
			p.Location.Lon,
			p.Types,
			p.Rating,
			p.Reviews,
			popularTimes,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range places {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("repository: failed to upsert place: %w", err)
		}
	}

	return nil
}

// FindPlaceByID returns a stored place, or nil when it was never stored
func (r *Repository) FindPlaceByID(ctx context.Context, id models.PlaceID) (*models.Place, error) {
	sql := `
		SELECT place_id, name, address, latitude, longitude, types, rating, reviews, popular_times
		FROM places
		WHERE place_id = $1
	`

	var (
		p            models.Place
		rawID        string
		popularTimes []byte
	)
	err := r.db.QueryRow(ctx, sql, string(id)).Scan(
		&rawID,
		&p.Name,
		&p.Address,
		&p.Location.Lat,
		&p.Location.Lon,
		&p.Types,
		&p.Rating,
		&p.Reviews,
		&popularTimes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to query place: %w", err)
	}
	p.ID = models.PlaceID(rawID)

	if popularTimes != nil {
		var week models.WeekHistogram
		if err := json.Unmarshal(popularTimes, &week); err != nil {
			return nil, fmt.Errorf("repository: failed to decode popular times of %s: %w", id, err)
		}
		p.PopularTimes = &week
	}

	return &p, nil
}
