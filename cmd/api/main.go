package main

import (
	"context"
	"net/http"

	"populartimes-crawler/internal/config"
	"populartimes-crawler/internal/googleapi"
	"populartimes-crawler/internal/handler"
	"populartimes-crawler/internal/logger"
	"populartimes-crawler/internal/repository"
	"populartimes-crawler/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logger.Setup(config.LogLevel, config.LogPretty)

	// Initialize layers
	var (
		store  service.PlaceStore
		finder handler.PlaceFinder
	)
	if config.DBSource != "" {
		conn, err := pgxpool.New(context.Background(), config.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()

		repo := repository.NewRepository(conn)
		if err := repo.CreateSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("cannot create schema")
		}
		store, finder = repo, repo
	}

	client := googleapi.NewClient(config.ClientOptions())
	extractor := googleapi.NewPopularTimesExtractor(googleapi.DefaultLayout)

	crawlerService := service.NewCrawlerService(client, extractor, store, config.CrawlerOptions())

	placeHandler := handler.NewPlaceHandler(crawlerService, finder)
	crawlHandler := handler.NewCrawlHandler(crawlerService)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/places/:id", placeHandler.GetPlace)
	r.GET("/stored/places/:id", placeHandler.GetStoredPlace)
	r.GET("/crawl/frame", crawlHandler.Frame)
	r.GET("/crawl/location", crawlHandler.Location)

	if err := r.Run(config.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
