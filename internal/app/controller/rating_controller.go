package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vukanihub/vukani-backend/internal/app/service"
	apperrors "github.com/vukanihub/vukani-backend/internal/errors"
	"github.com/vukanihub/vukani-backend/internal/middleware"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

type SubmitRatingRequest struct {
	Score   int    `json:"score" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// Submit records or replaces the caller's rating
// PUT /api/v1/businesses/:id/rating
func (ctrl *RatingController) Submit(c *gin.Context) {
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

	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.RatingInvalidScore, "score must be between 1 and 5")
		return
	}

	rating, err := ctrl.ratingService.SubmitRating(businessID, *userID, req.Score, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidScore):
			apperrors.BadRequest(c, apperrors.RatingInvalidScore, "score must be between 1 and 5")
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
		case errors.Is(err, service.ErrBusinessNotActive):
			apperrors.Conflict(c, apperrors.BusinessNotActive, "only active businesses can be rated")
		default:
			log.Error("Failed to submit rating", err, map[string]interface{}{
				"business_id": businessID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": rating})
}

// Mine returns the caller's own rating of a business
// GET /api/v1/businesses/:id/rating
func (ctrl *RatingController) Mine(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	rating, err := ctrl.ratingService.GetRating(businessID, *userID)
	if err != nil {
		if errors.Is(err, service.ErrRatingNotFound) {
			apperrors.NotFound(c, apperrors.RatingNotFound, "you have not rated this business")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": rating})
}

// List returns a page of ratings for a business
// GET /api/v1/businesses/:id/ratings
func (ctrl *RatingController) List(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
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

	ratings, total, err := ctrl.ratingService.ListRatings(businessID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ratings":   ratings,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Summary returns the aggregate for a business
// GET /api/v1/businesses/:id/rating-summary
func (ctrl *RatingController) Summary(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := ctrl.ratingService.GetSummary(businessID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Delete removes the caller's rating
// DELETE /api/v1/businesses/:id/rating
func (ctrl *RatingController) Delete(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.ratingService.DeleteRating(businessID, *userID); err != nil {
		if errors.Is(err, service.ErrRatingNotFound) {
			apperrors.NotFound(c, apperrors.RatingNotFound, "rating not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rating deleted"})
}
