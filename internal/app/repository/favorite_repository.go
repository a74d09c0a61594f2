package repository

import (
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	Add(favorite *model.Favorite) (*model.Favorite, error)
	Remove(userID, businessID uint) error
	IsFavorited(userID, businessID uint) (bool, error)
	ListActiveByUser(userID uint, offset, limit int) ([]model.Favorite, int64, error)
	CountForBusiness(businessID uint) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add inserts the membership pair. A duplicate insert is not an error: the
// existing row is returned instead.
func (r *favoriteRepository) Add(favorite *model.Favorite) (*model.Favorite, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "business_id"}},
		DoNothing: true,
	}).Create(favorite).Error
	if err != nil {
		logger.Error("Failed to add favorite", err, map[string]interface{}{
			"user_id":     favorite.UserID,
			"business_id": favorite.BusinessID,
		})
		return nil, err
	}

	// DoNothing leaves the struct without an ID on conflict; load the row
	// that actually exists either way.
	var existing model.Favorite
	err = r.db.Where("user_id = ? AND business_id = ?", favorite.UserID, favorite.BusinessID).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// Remove is an idempotent no-op when the pair is absent.
func (r *favoriteRepository) Remove(userID, businessID uint) error {
	err := r.db.Where("user_id = ? AND business_id = ?", userID, businessID).
		Delete(&model.Favorite{}).Error
	if err != nil {
		logger.Error("Failed to remove favorite", err, map[string]interface{}{
			"user_id":     userID,
			"business_id": businessID,
		})
		return err
	}
	return nil
}

func (r *favoriteRepository) IsFavorited(userID, businessID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND business_id = ?", userID, businessID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListActiveByUser returns the user's favorites whose business is currently
// active. The relation itself is retained for non-active businesses; they
// are just hidden from this list.
func (r *favoriteRepository) ListActiveByUser(userID uint, offset, limit int) ([]model.Favorite, int64, error) {
	base := r.db.Model(&model.Favorite{}).
		Joins("JOIN businesses ON businesses.id = favorites.business_id").
		Where("favorites.user_id = ?", userID).
		Where("businesses.status = ?", model.BusinessStatusActive).
		Where("businesses.deleted_at IS NULL")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favorites []model.Favorite
	err := base.Preload("Business").
		Order("favorites.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&favorites).Error
	if err != nil {
		logger.Error("Failed to list favorites", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, 0, err
	}

	return favorites, total, nil
}

func (r *favoriteRepository) CountForBusiness(businessID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("business_id = ?", businessID).
		Count(&count).Error
	return count, err
}
