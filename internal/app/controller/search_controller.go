package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/service"
	apperrors "github.com/vukanihub/vukani-backend/internal/errors"
	"github.com/vukanihub/vukani-backend/internal/middleware"
)

type SearchController struct {
	searchService service.SearchService
}

func NewSearchController(searchService service.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

func currentViewer(c *gin.Context) service.Viewer {
	return service.Viewer{
		UserID:  middleware.CurrentUserID(c),
		IsAdmin: middleware.IsAdmin(c),
	}
}

func parseFloatQuery(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid "+name)
		return nil, false
	}
	return &v, true
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Search is the discovery endpoint
// GET /api/v1/businesses
func (ctrl *SearchController) Search(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	lat, ok := parseFloatQuery(c, "lat")
	if !ok {
		return
	}
	lng, ok := parseFloatQuery(c, "lng")
	if !ok {
		return
	}
	radius, ok := parseFloatQuery(c, "radius_km")
	if !ok {
		return
	}

	opts := service.SearchOptions{
		Query:     c.Query("q"),
		City:      c.Query("city"),
		Category:  c.Query("category"),
		Latitude:  lat,
		Longitude: lng,
		Page:      parseIntQuery(c, "page", 1),
		PageSize:  parseIntQuery(c, "page_size", 0),
	}
	if radius != nil {
		opts.RadiusKm = *radius
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := model.BusinessStatus(statusStr)
		opts.Status = &status
	}
	opts.IncludeAllStatuses = c.Query("all_statuses") == "true"

	if ownerStr := c.Query("owner_id"); ownerStr != "" {
		ownerID, err := strconv.ParseUint(ownerStr, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid owner_id")
			return
		}
		id := uint(ownerID)
		opts.OwnerID = &id
	}

	result, err := ctrl.searchService.Search(c.Request.Context(), opts, currentViewer(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCoordinates):
			apperrors.BadRequest(c, apperrors.ValidationInvalidCoords, "lat and lng must be supplied together and be valid")
		case errors.Is(err, service.ErrStatusFilterDenied):
			apperrors.Forbidden(c, "status filter requires elevated access")
		default:
			log.Error("Search failed", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Nearby is the map-view endpoint: point plus radius in meters
// GET /api/v1/businesses/nearby
func (ctrl *SearchController) Nearby(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	lat, ok := parseFloatQuery(c, "lat")
	if !ok {
		return
	}
	lng, ok := parseFloatQuery(c, "lng")
	if !ok {
		return
	}
	if lat == nil || lng == nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "lat and lng are required")
		return
	}

	// An absent radius falls through as zero so the service applies the
	// same default and clamping as the main search.
	var radiusMeters float64
	if r, ok := parseFloatQuery(c, "radius"); !ok {
		return
	} else if r != nil {
		radiusMeters = *r
	}

	result, err := ctrl.searchService.Nearby(c.Request.Context(), *lat, *lng, radiusMeters, currentViewer(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCoordinates) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidCoords, "invalid coordinates")
			return
		}
		log.Error("Nearby search failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, result)
}
