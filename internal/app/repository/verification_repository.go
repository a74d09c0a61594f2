package repository

import (
	"time"

	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"gorm.io/gorm"
)

type VerificationRepository interface {
	CreateRequest(request *model.VerificationRequest) error
	FindRequestByID(id uint) (*model.VerificationRequest, error)
	FindLatestByBusiness(businessID uint) (*model.VerificationRequest, error)
	ListByStatus(status model.VerificationStatus, offset, limit int) ([]model.VerificationRequest, int64, error)

	// ClaimPendingRequest flips exactly one pending request to the given
	// decision. It returns false when the request was no longer pending,
	// which is how concurrent reviewers lose the race.
	ClaimPendingRequest(tx *gorm.DB, requestID uint, status model.VerificationStatus, reviewerID uint, reviewNotes string, reviewedAt time.Time) (bool, error)

	AddDocument(document *model.VerificationDocument) error
	FindDocumentByID(id uint) (*model.VerificationDocument, error)
	DeleteDocument(id uint) error

	// WithTx returns a repository bound to the given transaction handle so
	// a new request and the business-side reset can share one transaction.
	WithTx(tx *gorm.DB) VerificationRepository
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) WithTx(tx *gorm.DB) VerificationRepository {
	return &verificationRepository{db: tx}
}

func (r *verificationRepository) CreateRequest(request *model.VerificationRequest) error {
	if err := r.db.Create(request).Error; err != nil {
		logger.Error("Failed to create verification request", err, map[string]interface{}{
			"business_id": request.BusinessID,
		})
		return err
	}
	return nil
}

func (r *verificationRepository) FindRequestByID(id uint) (*model.VerificationRequest, error) {
	var request model.VerificationRequest
	err := r.db.Preload("Documents").First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *verificationRepository) FindLatestByBusiness(businessID uint) (*model.VerificationRequest, error) {
	var request model.VerificationRequest
	err := r.db.Preload("Documents").
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *verificationRepository) ListByStatus(status model.VerificationStatus, offset, limit int) ([]model.VerificationRequest, int64, error) {
	base := r.db.Model(&model.VerificationRequest{}).Where("status = ?", status)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []model.VerificationRequest
	err := base.Preload("Documents").
		Order("submitted_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		logger.Error("Failed to list verification requests", err, map[string]interface{}{
			"status": status,
		})
		return nil, 0, err
	}

	return requests, total, nil
}

// ClaimPendingRequest is the serialization point for reviews. The status
// predicate in the WHERE clause means only one of any number of concurrent
// reviewers observes RowsAffected == 1.
func (r *verificationRepository) ClaimPendingRequest(tx *gorm.DB, requestID uint, status model.VerificationStatus, reviewerID uint, reviewNotes string, reviewedAt time.Time) (bool, error) {
	result := tx.Model(&model.VerificationRequest{}).
		Where("id = ? AND status = ?", requestID, model.VerificationPending).
		Updates(map[string]interface{}{
			"status":       status,
			"review_notes": reviewNotes,
			"reviewed_by":  reviewerID,
			"reviewed_at":  reviewedAt,
		})
	if result.Error != nil {
		logger.Error("Failed to claim verification request", result.Error, map[string]interface{}{
			"request_id": requestID,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *verificationRepository) AddDocument(document *model.VerificationDocument) error {
	if err := r.db.Create(document).Error; err != nil {
		logger.Error("Failed to add verification document", err, map[string]interface{}{
			"request_id":   document.RequestID,
			"storage_path": document.StoragePath,
		})
		return err
	}
	return nil
}

func (r *verificationRepository) FindDocumentByID(id uint) (*model.VerificationDocument, error) {
	var document model.VerificationDocument
	if err := r.db.First(&document, id).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *verificationRepository) DeleteDocument(id uint) error {
	result := r.db.Delete(&model.VerificationDocument{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
