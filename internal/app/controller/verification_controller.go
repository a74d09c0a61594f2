package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vukanihub/vukani-backend/internal/app/service"
	apperrors "github.com/vukanihub/vukani-backend/internal/errors"
	"github.com/vukanihub/vukani-backend/internal/middleware"
)

type VerificationController struct {
	verificationService service.VerificationService
}

func NewVerificationController(verificationService service.VerificationService) *VerificationController {
	return &VerificationController{verificationService: verificationService}
}

type SubmitVerificationRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

type DocumentUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes" binding:"max=2000"`
}

func respondVerificationError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrVerificationNotFound):
		apperrors.NotFound(c, apperrors.VerificationNotFound, "verification request not found")
	case errors.Is(err, service.ErrVerificationAlreadyPending):
		apperrors.Conflict(c, apperrors.VerificationAlreadyPending, "a verification request is already pending")
	case errors.Is(err, service.ErrVerificationAlreadyReviewed):
		apperrors.Conflict(c, apperrors.VerificationAlreadyReviewed, "this request has already been reviewed")
	case errors.Is(err, service.ErrVerificationAlreadyApproved):
		apperrors.Conflict(c, apperrors.VerificationAlreadyApproved, "this business is already verified")
	case errors.Is(err, service.ErrDocumentLocked):
		apperrors.Conflict(c, apperrors.VerificationDocumentLocked, "documents are locked once the request is reviewed")
	case errors.Is(err, service.ErrDocumentNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "document not found")
	case errors.Is(err, service.ErrInvalidDocumentType):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid document type")
	case errors.Is(err, service.ErrInvalidContentType):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "unsupported file type")
	case errors.Is(err, service.ErrFileTooLarge):
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "file exceeds the size limit")
	default:
		return respondBusinessError(c, err)
	}
	return true
}

// Submit opens a verification claim for a business
// POST /api/v1/businesses/:id/verification
func (ctrl *VerificationController) Submit(c *gin.Context) {
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

	var req SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request body")
		return
	}

	request, err := ctrl.verificationService.SubmitRequest(businessID, *userID, req.Notes)
	if err != nil {
		if respondVerificationError(c, err) {
			return
		}
		log.Error("Failed to submit verification request", err, map[string]interface{}{
			"business_id": businessID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// Latest returns the most recent claim for a business
// GET /api/v1/businesses/:id/verification
func (ctrl *VerificationController) Latest(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	request, err := ctrl.verificationService.GetLatestForBusiness(businessID, *userID, middleware.IsAdmin(c))
	if err != nil {
		if respondVerificationError(c, err) {
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}

// RequestDocumentUpload issues a presigned PUT for evidence
// POST /api/v1/verification/:requestId/documents/upload-url
func (ctrl *VerificationController) RequestDocumentUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	requestID, ok := parseIDParam(c, "requestId")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	var req DocumentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "content_type is required")
		return
	}

	ticket, err := ctrl.verificationService.RequestDocumentUpload(c.Request.Context(), requestID, *userID, req.ContentType)
	if err != nil {
		if respondVerificationError(c, err) {
			return
		}
		log.Error("Failed to issue document upload URL", err, map[string]interface{}{
			"request_id": requestID,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalStorageError, "storage is temporarily unavailable")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// AddDocument attaches an uploaded document to a pending claim
// POST /api/v1/verification/:requestId/documents
func (ctrl *VerificationController) AddDocument(c *gin.Context) {
	requestID, ok := parseIDParam(c, "requestId")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	var input service.AddDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid document details")
		return
	}

	document, err := ctrl.verificationService.AddDocument(requestID, *userID, input)
	if err != nil {
		if respondVerificationError(c, err) {
			return
		}
		apperrors.ParseAndRespond(c, err, "verification")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": document})
}

// DeleteDocument removes evidence from a pending claim
// DELETE /api/v1/verification/documents/:documentId
func (ctrl *VerificationController) DeleteDocument(c *gin.Context) {
	documentID, ok := parseIDParam(c, "documentId")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.verificationService.DeleteDocument(c.Request.Context(), documentID, *userID); err != nil {
		if respondVerificationError(c, err) {
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

// Admin endpoints.

// ListPending returns the review queue, oldest first
// GET /api/v1/admin/verification
func (ctrl *VerificationController) ListPending(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	requests, total, err := ctrl.verificationService.ListPending(page, pageSize)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests":  requests,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Review decides a pending claim
// POST /api/v1/admin/verification/:requestId/review
func (ctrl *VerificationController) Review(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	requestID, ok := parseIDParam(c, "requestId")
	if !ok {
		return
	}
	reviewerID := middleware.CurrentUserID(c)
	if reviewerID == nil {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid review body")
		return
	}
	if !req.Approve && req.Notes == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "rejection requires notes")
		return
	}

	request, err := ctrl.verificationService.Review(requestID, *reviewerID, req.Approve, req.Notes)
	if err != nil {
		if respondVerificationError(c, err) {
			return
		}
		log.Error("Failed to review verification request", err, map[string]interface{}{
			"request_id": requestID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}
