package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"populartimes-crawler/internal/config"
	"populartimes-crawler/internal/export"
	"populartimes-crawler/internal/geo"
	"populartimes-crawler/internal/googleapi"
	"populartimes-crawler/internal/logger"
	"populartimes-crawler/internal/models"
	"populartimes-crawler/internal/repository"
	"populartimes-crawler/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup runs before exit
func run(args []string) int {
	fs := flag.NewFlagSet("crawler", flag.ContinueOnError)
	mode := fs.String("mode", "frame", "Entry point: frame, id or location")
	minLat := fs.Float64("min-lat", 0, "South edge of the frame")
	minLon := fs.Float64("min-lon", 0, "West edge of the frame")
	maxLat := fs.Float64("max-lat", 0, "North edge of the frame")
	maxLon := fs.Float64("max-lon", 0, "East edge of the frame")
	id := fs.String("id", "", "Place id to crawl in id mode")
	query := fs.String("q", "", "Location name to crawl around in location mode")
	radius := fs.Int("radius", 0, "Search radius in meters, defaults to RADIUS")
	out := fs.String("out", "", "Path of the workbook, defaults to OUTPUT_PATH")
	configDir := fs.String("config", "configs", "Directory containing app.env")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return 1
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store service.PlaceStore
	if cfg.DBSource != "" {
		conn, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			log.Error().Err(err).Msg("cannot connect to db")
			return 1
		}
		defer conn.Close()

		repo := repository.NewRepository(conn)
		if err := repo.CreateSchema(ctx); err != nil {
			log.Error().Err(err).Msg("cannot create schema")
			return 1
		}
		store = repo
	}

	client := googleapi.NewClient(cfg.ClientOptions())
	extractor := googleapi.NewPopularTimesExtractor(googleapi.DefaultLayout)
	crawler := service.NewCrawlerService(client, extractor, store, cfg.CrawlerOptions())

	var places []models.Place
	switch *mode {
	case "frame":
		bounds := geo.Bounds{
			Min: models.GeoPoint{Lat: *minLat, Lon: *minLon},
			Max: models.GeoPoint{Lat: *maxLat, Lon: *maxLon},
		}
		places, err = crawler.FromFrame(ctx, bounds, *radius)
	case "id":
		var place *models.Place
		place, err = crawler.FromID(ctx, models.PlaceID(*id))
		if place != nil {
			places = []models.Place{*place}
		}
	case "location":
		places, err = crawler.FromLocationName(ctx, *query, *radius)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Error().Err(err).Str("mode", *mode).Msg("crawl failed")
		return 1
	}

	if ctx.Err() != nil {
		log.Warn().Int("places", len(places)).Msg("crawl interrupted, exporting partial results")
	}

	path := *out
	if path == "" {
		path = cfg.OutputPath
	}
	if path == "" {
		path = export.DefaultPath
	}

	if err := export.Save(path, places); err != nil {
		log.Error().Err(err).Msg("cannot write workbook")
		return 1
	}

	log.Info().Int("places", len(places)).Str("path", path).Msg("crawl finished")
	return 0
}
