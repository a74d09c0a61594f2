package repository

import (
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingSummary is the aggregate for one business. Average is 0 when no
// ratings exist, never NaN or null.
type RatingSummary struct {
	Average   float64       `json:"average"`
	Count     int64         `json:"count"`
	Histogram map[int]int64 `json:"histogram"` // score (1-5) -> count
}

type RatingRepository interface {
	Upsert(rating *model.Rating) error
	FindByBusinessAndUser(businessID, userID uint) (*model.Rating, error)
	ListByBusiness(businessID uint, offset, limit int) ([]model.Rating, int64, error)
	Summary(businessID uint) (*RatingSummary, error)
	BatchSummaries(businessIDs []uint) (map[uint]RatingSummary, error)
	Delete(businessID, userID uint) (bool, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert inserts the rating or, when the (business, user) pair already has
// one, replaces its score and comment. Exactly one row per pair survives.
func (r *ratingRepository) Upsert(rating *model.Rating) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "business_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at"}),
	}).Create(rating).Error
	if err != nil {
		logger.Error("Failed to upsert rating", err, map[string]interface{}{
			"business_id": rating.BusinessID,
			"user_id":     rating.UserID,
		})
		return err
	}

	logger.Debug("Rating upserted", map[string]interface{}{
		"business_id": rating.BusinessID,
		"user_id":     rating.UserID,
		"score":       rating.Score,
	})
	return nil
}

func (r *ratingRepository) FindByBusinessAndUser(businessID, userID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Where("business_id = ? AND user_id = ?", businessID, userID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) ListByBusiness(businessID uint, offset, limit int) ([]model.Rating, int64, error) {
	var total int64
	query := r.db.Model(&model.Rating{}).Where("business_id = ?", businessID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ratings []model.Rating
	err := query.Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&ratings).Error
	if err != nil {
		return nil, 0, err
	}

	return ratings, total, nil
}

// Summary aggregates one business: average, count and the 1-5 histogram.
func (r *ratingRepository) Summary(businessID uint) (*RatingSummary, error) {
	summary := &RatingSummary{
		Histogram: emptyHistogram(),
	}

	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.Model(&model.Rating{}).
		Select("COALESCE(AVG(score), 0) as average, COUNT(*) as count").
		Where("business_id = ?", businessID).
		Scan(&row).Error
	if err != nil {
		logger.Error("Failed to aggregate ratings", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, err
	}

	summary.Average = row.Average
	summary.Count = row.Count
	if row.Count == 0 {
		return summary, nil
	}

	var buckets []struct {
		Score int
		Count int64
	}
	err = r.db.Model(&model.Rating{}).
		Select("score, COUNT(*) as count").
		Where("business_id = ?", businessID).
		Group("score").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	for _, b := range buckets {
		if b.Score >= 1 && b.Score <= 5 {
			summary.Histogram[b.Score] = b.Count
		}
	}

	return summary, nil
}

// BatchSummaries aggregates the exact requested set in one round trip.
// Businesses without ratings are simply absent from the map; callers default
// on a lookup miss.
func (r *ratingRepository) BatchSummaries(businessIDs []uint) (map[uint]RatingSummary, error) {
	summaries := make(map[uint]RatingSummary, len(businessIDs))
	if len(businessIDs) == 0 {
		return summaries, nil
	}

	var rows []struct {
		BusinessID uint
		Average    float64
		Count      int64
	}
	err := r.db.Model(&model.Rating{}).
		Select("business_id, AVG(score) as average, COUNT(*) as count").
		Where("business_id IN ?", businessIDs).
		Group("business_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to batch-aggregate ratings", err, map[string]interface{}{
			"business_count": len(businessIDs),
		})
		return nil, err
	}

	for _, row := range rows {
		summaries[row.BusinessID] = RatingSummary{
			Average: row.Average,
			Count:   row.Count,
		}
	}
	return summaries, nil
}

// Delete removes the user's rating and reports whether a row existed.
func (r *ratingRepository) Delete(businessID, userID uint) (bool, error) {
	result := r.db.Unscoped().
		Where("business_id = ? AND user_id = ?", businessID, userID).
		Delete(&model.Rating{})
	if result.Error != nil {
		logger.Error("Failed to delete rating", result.Error, map[string]interface{}{
			"business_id": businessID,
			"user_id":     userID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func emptyHistogram() map[int]int64 {
	histogram := make(map[int]int64, 5)
	for score := 1; score <= 5; score++ {
		histogram[score] = 0
	}
	return histogram
}
