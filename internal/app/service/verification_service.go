package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrVerificationNotFound        = errors.New("verification request not found")
	ErrVerificationAlreadyPending  = errors.New("a verification request is already pending")
	ErrVerificationAlreadyReviewed = errors.New("verification request already reviewed")
	ErrVerificationAlreadyApproved = errors.New("business is already verified")
	ErrDocumentLocked              = errors.New("documents are locked once the request is reviewed")
	ErrDocumentNotFound            = errors.New("verification document not found")
	ErrInvalidDocumentType         = errors.New("invalid document type")
)

const maxDocumentSizeBytes = 20 << 20 // 20 MiB

var allowedDocumentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

var validDocumentKinds = map[model.DocumentType]bool{
	model.DocumentTypeID:                  true,
	model.DocumentTypeProofOfAddress:      true,
	model.DocumentTypeCompanyRegistration: true,
	model.DocumentTypeOwnershipAffidavit:  true,
	model.DocumentTypeOther:               true,
}

type AddDocumentInput struct {
	DocumentType model.DocumentType `json:"document_type" binding:"required"`
	StoragePath  string             `json:"storage_path" binding:"required"`
	FileName     string             `json:"file_name" binding:"required"`
	ContentType  string             `json:"content_type" binding:"required"`
	SizeBytes    int64              `json:"size_bytes"`
}

type VerificationService interface {
	SubmitRequest(businessID, userID uint, notes string) (*model.VerificationRequest, error)
	GetRequest(requestID, userID uint, isAdmin bool) (*model.VerificationRequest, error)
	GetLatestForBusiness(businessID, userID uint, isAdmin bool) (*model.VerificationRequest, error)
	ListPending(page, pageSize int) ([]model.VerificationRequest, int64, error)

	RequestDocumentUpload(ctx context.Context, requestID, userID uint, contentType string) (*UploadTicket, error)
	AddDocument(requestID, userID uint, input AddDocumentInput) (*model.VerificationDocument, error)
	DeleteDocument(ctx context.Context, documentID, userID uint) error

	// Review decides a pending request exactly once and mirrors the outcome
	// onto the business, atomically.
	Review(requestID, reviewerID uint, approve bool, notes string) (*model.VerificationRequest, error)
}

type verificationService struct {
	db               *gorm.DB
	verificationRepo repository.VerificationRepository
	businessRepo     repository.BusinessRepository
	mediaRepo        repository.MediaRepository
	storage          ObjectStorage
}

func NewVerificationService(
	db *gorm.DB,
	verificationRepo repository.VerificationRepository,
	businessRepo repository.BusinessRepository,
	mediaRepo repository.MediaRepository,
	storage ObjectStorage,
) VerificationService {
	return &verificationService{
		db:               db,
		verificationRepo: verificationRepo,
		businessRepo:     businessRepo,
		mediaRepo:        mediaRepo,
		storage:          storage,
	}
}

// SubmitRequest opens a new verification claim. Only one pending claim may
// exist per business, and an already-verified business cannot file another.
func (s *verificationService) SubmitRequest(businessID, userID uint, notes string) (*model.VerificationRequest, error) {
	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if business.UserID != userID {
		return nil, ErrBusinessAccessDenied
	}
	if business.VerificationStatus == model.VerificationApproved {
		return nil, ErrVerificationAlreadyApproved
	}

	latest, err := s.verificationRepo.FindLatestByBusiness(businessID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if latest != nil && !latest.IsReviewed() {
		return nil, ErrVerificationAlreadyPending
	}

	request := &model.VerificationRequest{
		BusinessID:  businessID,
		Status:      model.VerificationPending,
		Notes:       notes,
		SubmittedAt: time.Now(),
	}

	// The new request and the reset of a previous rejection on the business
	// land together or not at all, so a failed submit can be retried.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.verificationRepo.WithTx(tx).CreateRequest(request); err != nil {
			return err
		}

		result := tx.Model(&model.Business{}).
			Where("id = ?", businessID).
			Updates(map[string]interface{}{
				"verification_status": model.VerificationPending,
				"verification_reason": "",
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBusinessNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to submit verification request", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, err
	}

	logger.Info("Verification request submitted", map[string]interface{}{
		"request_id":  request.ID,
		"business_id": businessID,
	})

	return request, nil
}

func (s *verificationService) GetRequest(requestID, userID uint, isAdmin bool) (*model.VerificationRequest, error) {
	request, err := s.verificationRepo.FindRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}

	if !isAdmin {
		if err := s.requireOwner(request.BusinessID, userID); err != nil {
			return nil, err
		}
	}

	return request, nil
}

func (s *verificationService) GetLatestForBusiness(businessID, userID uint, isAdmin bool) (*model.VerificationRequest, error) {
	if !isAdmin {
		if err := s.requireOwner(businessID, userID); err != nil {
			return nil, err
		}
	}

	request, err := s.verificationRepo.FindLatestByBusiness(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return request, nil
}

func (s *verificationService) ListPending(page, pageSize int) ([]model.VerificationRequest, int64, error) {
	offset := (page - 1) * pageSize
	return s.verificationRepo.ListByStatus(model.VerificationPending, offset, pageSize)
}

// RequestDocumentUpload issues a presigned PUT for evidence. Documents can
// only be attached while the request is pending.
func (s *verificationService) RequestDocumentUpload(ctx context.Context, requestID, userID uint, contentType string) (*UploadTicket, error) {
	ext, ok := allowedDocumentTypes[contentType]
	if !ok {
		return nil, ErrInvalidContentType
	}

	request, err := s.pendingRequestForOwner(requestID, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("verification/%d/%s%s", request.ID, uuid.New().String(), ext)

	url, err := s.storage.PresignUpload(ctx, key, contentType)
	if err != nil {
		logger.Error("Failed to presign document upload", err, map[string]interface{}{
			"request_id": requestID,
		})
		return nil, err
	}

	return &UploadTicket{UploadURL: url, StoragePath: key}, nil
}

func (s *verificationService) AddDocument(requestID, userID uint, input AddDocumentInput) (*model.VerificationDocument, error) {
	if !validDocumentKinds[input.DocumentType] {
		return nil, ErrInvalidDocumentType
	}
	if _, ok := allowedDocumentTypes[input.ContentType]; !ok {
		return nil, ErrInvalidContentType
	}
	if input.SizeBytes > maxDocumentSizeBytes {
		return nil, ErrFileTooLarge
	}

	request, err := s.pendingRequestForOwner(requestID, userID)
	if err != nil {
		return nil, err
	}

	document := &model.VerificationDocument{
		RequestID:    request.ID,
		DocumentType: input.DocumentType,
		StoragePath:  input.StoragePath,
		FileName:     path.Base(input.FileName),
		ContentType:  input.ContentType,
		SizeBytes:    input.SizeBytes,
	}

	if err := s.verificationRepo.AddDocument(document); err != nil {
		return nil, err
	}

	logger.Info("Verification document added", map[string]interface{}{
		"request_id":    request.ID,
		"document_id":   document.ID,
		"document_type": document.DocumentType,
	})

	return document, nil
}

func (s *verificationService) DeleteDocument(ctx context.Context, documentID, userID uint) error {
	document, err := s.verificationRepo.FindDocumentByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if _, err := s.pendingRequestForOwner(document.RequestID, userID); err != nil {
		return err
	}

	if err := s.verificationRepo.DeleteDocument(documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if err := s.storage.DeleteObject(ctx, document.StoragePath); err != nil {
		logger.Warn("Storage delete failed for document, recording orphan", map[string]interface{}{
			"storage_path": document.StoragePath,
			"error":        err.Error(),
		})
		if recordErr := s.mediaRepo.RecordOrphan(document.StoragePath, err.Error()); recordErr != nil {
			logger.Error("Failed to record orphaned document", recordErr, map[string]interface{}{
				"storage_path": document.StoragePath,
			})
		}
	}

	return nil
}

// Review claims the pending request and mirrors the decision onto the
// business in one transaction. Of two concurrent reviewers exactly one
// claims the row; the other gets ErrVerificationAlreadyReviewed and the
// business is written at most once.
func (s *verificationService) Review(requestID, reviewerID uint, approve bool, notes string) (*model.VerificationRequest, error) {
	status := model.VerificationApproved
	if !approve {
		status = model.VerificationRejected
	}
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		claimed, err := s.verificationRepo.ClaimPendingRequest(tx, requestID, status, reviewerID, notes, now)
		if err != nil {
			return err
		}
		if !claimed {
			var request model.VerificationRequest
			if err := tx.First(&request, requestID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrVerificationNotFound
				}
				return err
			}
			return ErrVerificationAlreadyReviewed
		}

		var request model.VerificationRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"verification_status": status,
			"verification_reason": "",
		}
		if approve {
			updates["verified_at"] = now
		} else {
			updates["verification_reason"] = notes
			updates["verified_at"] = nil
		}

		result := tx.Model(&model.Business{}).
			Where("id = ?", request.BusinessID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBusinessNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Verification request reviewed", map[string]interface{}{
		"request_id":  requestID,
		"reviewer_id": reviewerID,
		"approved":    approve,
	})

	return s.verificationRepo.FindRequestByID(requestID)
}

func (s *verificationService) requireOwner(businessID, userID uint) error {
	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBusinessNotFound
		}
		return err
	}
	if business.UserID != userID {
		return ErrBusinessAccessDenied
	}
	return nil
}

func (s *verificationService) pendingRequestForOwner(requestID, userID uint) (*model.VerificationRequest, error) {
	request, err := s.verificationRepo.FindRequestByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}

	if err := s.requireOwner(request.BusinessID, userID); err != nil {
		return nil, err
	}

	if request.IsReviewed() {
		return nil, ErrDocumentLocked
	}

	return request, nil
}
