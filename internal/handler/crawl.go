package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/geo"
	"populartimes-crawler/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CrawlHandler handles area crawl requests
type CrawlHandler struct {
	service CrawlService
}

// CrawlService crawls every place in an area
type CrawlService interface {
	FromFrame(context.Context, geo.Bounds, int) ([]models.Place, error)
	FromLocationName(context.Context, string, int) ([]models.Place, error)
}

// NewCrawlHandler creates a new crawl handler
func NewCrawlHandler(svc CrawlService) *CrawlHandler {
	return &CrawlHandler{service: svc}
}

// Frame handles GET /crawl/frame requests
func (h *CrawlHandler) Frame(c *gin.Context) {
	var bounds geo.Bounds
	params := []struct {
		name string
		dst  *float64
	}{
		{"min_lat", &bounds.Min.Lat},
		{"min_lon", &bounds.Min.Lon},
		{"max_lat", &bounds.Max.Lat},
		{"max_lon", &bounds.Max.Lon},
	}

	for _, p := range params {
		raw := c.Query(p.name)
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'min_lat', 'min_lon', 'max_lat' and 'max_lon'"})
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + p.name + " format"})
			return
		}
		*p.dst = v
	}

	radius, ok := radiusParam(c)
	if !ok {
		return
	}

	places, err := h.service.FromFrame(c.Request.Context(), bounds, radius)
	h.respond(c, places, err)
}

// Location handles GET /crawl/location requests
func (h *CrawlHandler) Location(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return
	}

	radius, ok := radiusParam(c)
	if !ok {
		return
	}

	places, err := h.service.FromLocationName(c.Request.Context(), query, radius)
	h.respond(c, places, err)
}

func (h *CrawlHandler) respond(c *gin.Context, places []models.Place, err error) {
	if err != nil {
		if errors.Is(err, apperr.ErrConfiguration) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("crawl failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if places == nil {
		places = []models.Place{}
	}
	c.JSON(http.StatusOK, places)
}

// radiusParam reads the optional radius; zero selects the configured one
func radiusParam(c *gin.Context) (int, bool) {
	raw := c.Query("radius")
	if raw == "" {
		return 0, true
	}

	radius, err := strconv.Atoi(raw)
	if err != nil || radius <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius format"})
		return 0, false
	}
	return radius, true
}
