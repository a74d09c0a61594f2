package repository

import (
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MediaRepository interface {
	Create(asset *model.MediaAsset) error
	FindByID(id uint) (*model.MediaAsset, error)
	FindByBusiness(businessID uint) ([]model.MediaAsset, error)
	FindLogoByBusiness(businessID uint) (*model.MediaAsset, error)
	CountByBusinessAndType(businessID uint, mediaType model.MediaType) (int64, error)
	Delete(id uint) error

	RecordOrphan(storagePath, lastError string) error
	ListOrphans(limit int) ([]model.OrphanedObject, error)
	ResolveOrphan(id uint) error
	TouchOrphan(id uint, lastError string) error

	// WithTx returns a repository bound to the given transaction handle so
	// cap checks and inserts can share one transaction.
	WithTx(tx *gorm.DB) MediaRepository
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) WithTx(tx *gorm.DB) MediaRepository {
	return &mediaRepository{db: tx}
}

func (r *mediaRepository) Create(asset *model.MediaAsset) error {
	if err := r.db.Create(asset).Error; err != nil {
		logger.Error("Failed to create media asset", err, map[string]interface{}{
			"business_id":  asset.BusinessID,
			"media_type":   asset.MediaType,
			"storage_path": asset.StoragePath,
		})
		return err
	}
	return nil
}

func (r *mediaRepository) FindByID(id uint) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	if err := r.db.First(&asset, id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *mediaRepository) FindByBusiness(businessID uint) ([]model.MediaAsset, error) {
	var assets []model.MediaAsset
	err := r.db.Where("business_id = ?", businessID).
		Order("media_type ASC, display_order ASC, id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *mediaRepository) FindLogoByBusiness(businessID uint) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	err := r.db.Where("business_id = ? AND media_type = ?", businessID, model.MediaTypeLogo).
		First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *mediaRepository) CountByBusinessAndType(businessID uint, mediaType model.MediaType) (int64, error) {
	var count int64
	err := r.db.Model(&model.MediaAsset{}).
		Where("business_id = ? AND media_type = ?", businessID, mediaType).
		Count(&count).Error
	return count, err
}

// Delete removes the record permanently. The storage object is the caller's
// problem; the record going first is what keeps a half-failed delete safe.
func (r *mediaRepository) Delete(id uint) error {
	result := r.db.Unscoped().Delete(&model.MediaAsset{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete media asset", result.Error, map[string]interface{}{
			"media_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *mediaRepository) RecordOrphan(storagePath, lastError string) error {
	orphan := model.OrphanedObject{
		StoragePath: storagePath,
		LastError:   lastError,
		Attempts:    1,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"last_error": lastError}),
	}).Create(&orphan).Error
	if err != nil {
		logger.Error("Failed to record orphaned object", err, map[string]interface{}{
			"storage_path": storagePath,
		})
	}
	return err
}

func (r *mediaRepository) ListOrphans(limit int) ([]model.OrphanedObject, error) {
	var orphans []model.OrphanedObject
	err := r.db.Order("created_at ASC").Limit(limit).Find(&orphans).Error
	if err != nil {
		return nil, err
	}
	return orphans, nil
}

func (r *mediaRepository) ResolveOrphan(id uint) error {
	return r.db.Delete(&model.OrphanedObject{}, id).Error
}

func (r *mediaRepository) TouchOrphan(id uint, lastError string) error {
	return r.db.Model(&model.OrphanedObject{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_error": lastError,
			"attempts":   gorm.Expr("attempts + 1"),
		}).Error
}
