package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/service"
	apperrors "github.com/vukanihub/vukani-backend/internal/errors"
	"github.com/vukanihub/vukani-backend/internal/middleware"
)

type MediaController struct {
	mediaService service.MediaService
}

func NewMediaController(mediaService service.MediaService) *MediaController {
	return &MediaController{mediaService: mediaService}
}

type UploadRequest struct {
	MediaType   string `json:"media_type" binding:"required,oneof=logo photo"`
	ContentType string `json:"content_type" binding:"required"`
}

type ConfirmUploadRequest struct {
	MediaType string `json:"media_type" binding:"required,oneof=logo photo"`
	service.SaveMediaInput
}

func respondMediaError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrMediaNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "media not found")
	case errors.Is(err, service.ErrLogoAlreadyExists):
		apperrors.Conflict(c, apperrors.UploadLogoExists, "business already has a logo")
	case errors.Is(err, service.ErrPhotoLimitReached):
		apperrors.Conflict(c, apperrors.UploadPhotoLimit, "photo limit reached for this business")
	case errors.Is(err, service.ErrInvalidContentType):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "unsupported file type")
	case errors.Is(err, service.ErrFileTooLarge):
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "file exceeds the size limit")
	case errors.Is(err, service.ErrInvalidMediaType):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid media request")
	default:
		return respondBusinessError(c, err)
	}
	return true
}

// RequestUpload issues a presigned PUT for a new media object
// POST /api/v1/businesses/:id/media/upload-url
func (ctrl *MediaController) RequestUpload(c *gin.Context) {
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

	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "media_type and content_type are required")
		return
	}

	ticket, err := ctrl.mediaService.RequestUpload(
		c.Request.Context(), businessID, *userID, middleware.IsAdmin(c),
		model.MediaType(req.MediaType), req.ContentType)
	if err != nil {
		if respondMediaError(c, err) {
			return
		}
		log.Error("Failed to issue upload URL", err, map[string]interface{}{
			"business_id": businessID,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalStorageError, "storage is temporarily unavailable")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ConfirmUpload records a completed upload
// POST /api/v1/businesses/:id/media
func (ctrl *MediaController) ConfirmUpload(c *gin.Context) {
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

	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid media details")
		return
	}

	asset, err := ctrl.mediaService.SaveRecord(
		businessID, *userID, middleware.IsAdmin(c),
		model.MediaType(req.MediaType), req.SaveMediaInput)
	if err != nil {
		if respondMediaError(c, err) {
			return
		}
		log.Error("Failed to save media record", err, map[string]interface{}{
			"business_id": businessID,
		})
		apperrors.ParseAndRespond(c, err, "media")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"media": asset})
}

// List returns a business's media with short-lived download URLs
// GET /api/v1/businesses/:id/media
func (ctrl *MediaController) List(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	views, err := ctrl.mediaService.ListMedia(c.Request.Context(), businessID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"media": views})
}

// Download resolves one media record to a presigned GET URL
// GET /api/v1/media/:mediaId/url
func (ctrl *MediaController) Download(c *gin.Context) {
	mediaID, ok := parseIDParam(c, "mediaId")
	if !ok {
		return
	}

	url, err := ctrl.mediaService.ResolveDownloadURL(c.Request.Context(), mediaID)
	if err != nil {
		if respondMediaError(c, err) {
			return
		}
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalStorageError, "storage is temporarily unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Delete removes a media record, reclaiming the object best-effort
// DELETE /api/v1/media/:mediaId
func (ctrl *MediaController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	mediaID, ok := parseIDParam(c, "mediaId")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.mediaService.DeleteMedia(c.Request.Context(), mediaID, *userID, middleware.IsAdmin(c)); err != nil {
		if respondMediaError(c, err) {
			return
		}
		log.Error("Failed to delete media", err, map[string]interface{}{
			"media_id": mediaID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "media deleted"})
}
