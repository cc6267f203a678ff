package config

import (
	"errors"
	"fmt"
	"time"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/googleapi"
	"populartimes-crawler/internal/service"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	APIKey                  string        `mapstructure:"API_KEY"`
	PlaceType               string        `mapstructure:"PLACE_TYPE"`
	RadiusMeters            int           `mapstructure:"RADIUS"`
	Keyword                 string        `mapstructure:"KEYWORD"`
	PostFilter              bool          `mapstructure:"POST_FILTER"`
	IncludeWithoutHistogram bool          `mapstructure:"INCLUDE_WITHOUT_HISTOGRAM"`
	ProbeWorkers            int           `mapstructure:"PROBE_WORKERS"`
	EnrichWorkers           int           `mapstructure:"ENRICH_WORKERS"`
	RetryEnabled            bool          `mapstructure:"RETRY_ENABLED"`
	RetryMaxAttempts        int           `mapstructure:"RETRY_MAX_ATTEMPTS"`
	HTTPTimeout             time.Duration `mapstructure:"HTTP_TIMEOUT"`
	PlacesBaseURL           string        `mapstructure:"PLACES_BASE_URL"`
	SearchBaseURL           string        `mapstructure:"SEARCH_BASE_URL"`
	OutputPath              string        `mapstructure:"OUTPUT_PATH"`
	DBSource                string        `mapstructure:"DB_SOURCE"`
	ServerAddress           string        `mapstructure:"SERVER_ADDRESS"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	LogPretty               bool          `mapstructure:"LOG_PRETTY"`
}

var defaults = map[string]any{
	"API_KEY":                   "",
	"PLACE_TYPE":                "",
	"RADIUS":                    500,
	"KEYWORD":                   "",
	"POST_FILTER":               false,
	"INCLUDE_WITHOUT_HISTOGRAM": false,
	"PROBE_WORKERS":             1,
	"ENRICH_WORKERS":            1,
	"RETRY_ENABLED":             false,
	"RETRY_MAX_ATTEMPTS":        3,
	"HTTP_TIMEOUT":              "30s",
	"PLACES_BASE_URL":           "",
	"SEARCH_BASE_URL":           "",
	"OUTPUT_PATH":               "googlePlaces.xlsx",
	"DB_SOURCE":                 "",
	"SERVER_ADDRESS":            "0.0.0.0:8080",
	"LOG_LEVEL":                 "info",
	"LOG_PRETTY":                false,
}

// LoadConfig reads configuration from app.env in path, if present, and from
// environment variables, which take precedence.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("%w: config: cannot read config file: %v", apperr.ErrConfiguration, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("%w: config: cannot decode config: %v", apperr.ErrConfiguration, err)
	}

	return config, config.Validate()
}

// Validate checks the settings every crawl needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: config: API_KEY is required", apperr.ErrConfiguration)
	}
	if c.PlaceType == "" {
		return fmt.Errorf("%w: config: PLACE_TYPE is required", apperr.ErrConfiguration)
	}
	if c.RadiusMeters <= 0 {
		return fmt.Errorf("%w: config: RADIUS must be positive, got %d", apperr.ErrConfiguration, c.RadiusMeters)
	}
	if c.ProbeWorkers < 1 || c.EnrichWorkers < 1 {
		return fmt.Errorf("%w: config: worker counts must be at least 1", apperr.ErrConfiguration)
	}
	return nil
}

// CrawlerOptions returns the crawl parameters for the crawler service.
func (c Config) CrawlerOptions() service.CrawlerOptions {
	return service.CrawlerOptions{
		PlaceType:               c.PlaceType,
		RadiusMeters:            c.RadiusMeters,
		Keyword:                 c.Keyword,
		PostFilter:              c.PostFilter,
		IncludeWithoutHistogram: c.IncludeWithoutHistogram,
		ProbeWorkers:            c.ProbeWorkers,
		EnrichWorkers:           c.EnrichWorkers,
	}
}

// ClientOptions returns the settings of the upstream client.
func (c Config) ClientOptions() googleapi.Options {
	return googleapi.Options{
		APIKey:           c.APIKey,
		PlacesBaseURL:    c.PlacesBaseURL,
		SearchBaseURL:    c.SearchBaseURL,
		Timeout:          c.HTTPTimeout,
		RetryEnabled:     c.RetryEnabled,
		RetryMaxAttempts: c.RetryMaxAttempts,
	}
}
