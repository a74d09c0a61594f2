package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vukanihub/vukani-backend/internal/app/service"
	apperrors "github.com/vukanihub/vukani-backend/internal/errors"
	"github.com/vukanihub/vukani-backend/internal/middleware"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{favoriteService: favoriteService}
}

// Add marks a business as a favorite
// PUT /api/v1/businesses/:id/favorite
func (ctrl *FavoriteController) Add(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	favorite, err := ctrl.favoriteService.AddFavorite(*userID, businessID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
		case errors.Is(err, service.ErrBusinessNotActive):
			apperrors.Conflict(c, apperrors.BusinessNotActive, "only active businesses can be favorited")
		default:
			log.Error("Failed to add favorite", err, map[string]interface{}{
				"business_id": businessID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorite": favorite})
}

// Remove clears the favorite mark, succeeding even when none existed
// DELETE /api/v1/businesses/:id/favorite
func (ctrl *FavoriteController) Remove(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.favoriteService.RemoveFavorite(*userID, businessID); err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "favorite removed"})
}

// List returns the caller's favorites of still-active businesses
// GET /api/v1/favorites
func (ctrl *FavoriteController) List(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	favorites, total, err := ctrl.favoriteService.ListFavorites(*userID, page, pageSize)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
