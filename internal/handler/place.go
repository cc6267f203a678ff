package handler

import (
	"context"
	"errors"
	"net/http"

	"populartimes-crawler/internal/apperr"
	"populartimes-crawler/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PlaceHandler handles single place requests
type PlaceHandler struct {
	service PlaceService
	store   PlaceFinder
}

// PlaceService crawls a single place on demand
type PlaceService interface {
	FromID(context.Context, models.PlaceID) (*models.Place, error)
}

// PlaceFinder looks up places saved by earlier crawls
type PlaceFinder interface {
	FindPlaceByID(context.Context, models.PlaceID) (*models.Place, error)
}

// NewPlaceHandler creates a new place handler. store may be nil.
func NewPlaceHandler(svc PlaceService, store PlaceFinder) *PlaceHandler {
	return &PlaceHandler{service: svc, store: store}
}

// GetPlace handles GET /places/:id requests
func (h *PlaceHandler) GetPlace(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required path parameter 'id'"})
		return
	}

	place, err := h.service.FromID(c.Request.Context(), models.PlaceID(id))
	if err != nil {
		if errors.Is(err, apperr.ErrConfiguration) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("place_id", id).Msg("place crawl failed")
		if upstreamFailure(err) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "upstream request failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if place == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no popular times found for the specified place"})
		return
	}

	c.JSON(http.StatusOK, place)
}

// GetStoredPlace handles GET /stored/places/:id requests
func (h *PlaceHandler) GetStoredPlace(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no database configured"})
		return
	}

	id := c.Param("id")
	place, err := h.store.FindPlaceByID(c.Request.Context(), models.PlaceID(id))
	if err != nil {
		log.Error().Err(err).Str("place_id", id).Msg("stored place lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if place == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "place has not been crawled"})
		return
	}

	c.JSON(http.StatusOK, place)
}

func upstreamFailure(err error) bool {
	return errors.Is(err, apperr.ErrTransport) ||
		errors.Is(err, apperr.ErrUpstream) ||
		errors.Is(err, apperr.ErrPayloadShape)
}
