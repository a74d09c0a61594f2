package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vukanihub/vukani-backend/internal/app/service"
	apperrors "github.com/vukanihub/vukani-backend/internal/errors"
	"github.com/vukanihub/vukani-backend/internal/middleware"
)

type BusinessController struct {
	businessService service.BusinessService
}

func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{businessService: businessService}
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=5"`
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// respondBusinessError maps the shared business sentinels onto HTTP codes.
// Returns false when the error was not one of them.
func respondBusinessError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrBusinessNotFound):
		apperrors.NotFound(c, apperrors.BusinessNotFound, "business not found")
	case errors.Is(err, service.ErrBusinessAccessDenied):
		apperrors.Forbidden(c, "you do not own this business")
	case errors.Is(err, service.ErrBusinessArchived):
		apperrors.Conflict(c, apperrors.BusinessArchived, "business has been archived")
	case errors.Is(err, service.ErrInvalidTransition):
		apperrors.Conflict(c, apperrors.BusinessInvalidTransition, "business is not in a state that allows this action")
	case errors.Is(err, service.ErrInvalidCoordinates):
		apperrors.BadRequest(c, apperrors.ValidationInvalidCoords, "latitude and longitude must form a valid pair")
	default:
		return false
	}
	return true
}

// Create registers a new draft listing
// POST /api/v1/businesses
func (ctrl *BusinessController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	var input service.CreateBusinessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid business details")
		return
	}

	business, err := ctrl.businessService.CreateBusiness(*userID, input)
	if err != nil {
		if respondBusinessError(c, err) {
			return
		}
		log.Error("Failed to create business", err, nil)
		apperrors.ParseAndRespond(c, err, "business")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"business": business})
}

// Update applies a partial edit to a listing
// PATCH /api/v1/businesses/:id
func (ctrl *BusinessController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	var input service.UpdateBusinessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid business details")
		return
	}

	business, err := ctrl.businessService.UpdateBusiness(id, *userID, middleware.IsAdmin(c), input)
	if err != nil {
		if respondBusinessError(c, err) {
			return
		}
		log.Error("Failed to update business", err, map[string]interface{}{
			"business_id": id,
		})
		apperrors.ParseAndRespond(c, err, "business")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// Get returns the enriched detail view of one listing
// GET /api/v1/businesses/:id
func (ctrl *BusinessController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.businessService.GetBusinessDetail(
		c.Request.Context(), id, middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		if respondBusinessError(c, err) {
			return
		}
		log.Error("Failed to fetch business detail", err, map[string]interface{}{
			"business_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Mine lists the caller's own listings regardless of status
// GET /api/v1/businesses/mine
func (ctrl *BusinessController) Mine(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	businesses, err := ctrl.businessService.GetMyBusinesses(*userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"count":      len(businesses),
	})
}

// Publish submits a draft for admin review
// POST /api/v1/businesses/:id/publish
func (ctrl *BusinessController) Publish(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	business, err := ctrl.businessService.Publish(id, *userID)
	if err != nil {
		if respondBusinessError(c, err) {
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// Archive retires a listing permanently
// POST /api/v1/businesses/:id/archive
func (ctrl *BusinessController) Archive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	business, err := ctrl.businessService.Archive(id, *userID, middleware.IsAdmin(c))
	if err != nil {
		if respondBusinessError(c, err) {
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// Admin moderation endpoints. All of these sit behind RequireAdmin.

// Approve activates a pending listing
// POST /api/v1/admin/businesses/:id/approve
func (ctrl *BusinessController) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	business, err := ctrl.businessService.Approve(id)
	if err != nil {
		if respondBusinessError(c, err) {
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// Reject sends a pending listing back to draft
// POST /api/v1/admin/businesses/:id/reject
func (ctrl *BusinessController) Reject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "a rejection reason is required")
		return
	}

	business, err := ctrl.businessService.Reject(id, req.Reason)
	if err != nil {
		if respondBusinessError(c, err) {
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// Suspend hides an active listing
// POST /api/v1/admin/businesses/:id/suspend
func (ctrl *BusinessController) Suspend(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	business, err := ctrl.businessService.Suspend(id)
	if err != nil {
		if respondBusinessError(c, err) {
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// Stats reports the listing count per publication status
// GET /api/v1/admin/businesses/stats
func (ctrl *BusinessController) Stats(c *gin.Context) {
	stats, err := ctrl.businessService.ModerationStats()
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to count businesses by status", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Reactivate restores a suspended listing
// POST /api/v1/admin/businesses/:id/reactivate
func (ctrl *BusinessController) Reactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	business, err := ctrl.businessService.Reactivate(id)
	if err != nil {
		if respondBusinessError(c, err) {
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}
