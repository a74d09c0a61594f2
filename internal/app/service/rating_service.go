package service

import (
	"errors"

	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRatingNotFound    = errors.New("rating not found")
	ErrInvalidScore      = errors.New("score must be between 1 and 5")
	ErrBusinessNotActive = errors.New("business is not active")
)

type RatingService interface {
	SubmitRating(businessID, userID uint, score int, comment string) (*model.Rating, error)
	GetRating(businessID, userID uint) (*model.Rating, error)
	ListRatings(businessID uint, page, pageSize int) ([]model.Rating, int64, error)
	GetSummary(businessID uint) (*repository.RatingSummary, error)
	DeleteRating(businessID, userID uint) error
}

type ratingService struct {
	ratingRepo   repository.RatingRepository
	businessRepo repository.BusinessRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, businessRepo repository.BusinessRepository) RatingService {
	return &ratingService{
		ratingRepo:   ratingRepo,
		businessRepo: businessRepo,
	}
}

// SubmitRating records or replaces the caller's rating. Resubmission is not
// an error: the upsert makes the last write win for the (business, user)
// pair.
func (s *ratingService) SubmitRating(businessID, userID uint, score int, comment string) (*model.Rating, error) {
	if score < 1 || score > 5 {
		return nil, ErrInvalidScore
	}

	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if business.Status != model.BusinessStatusActive {
		return nil, ErrBusinessNotActive
	}

	rating := &model.Rating{
		BusinessID: businessID,
		UserID:     userID,
		Score:      score,
		Comment:    comment,
	}

	if err := s.ratingRepo.Upsert(rating); err != nil {
		return nil, err
	}

	// Reload so the caller sees the surviving row regardless of whether the
	// upsert inserted or replaced.
	saved, err := s.ratingRepo.FindByBusinessAndUser(businessID, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("Rating submitted", map[string]interface{}{
		"business_id": businessID,
		"user_id":     userID,
		"score":       score,
	})

	return saved, nil
}

func (s *ratingService) GetRating(businessID, userID uint) (*model.Rating, error) {
	rating, err := s.ratingRepo.FindByBusinessAndUser(businessID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) ListRatings(businessID uint, page, pageSize int) ([]model.Rating, int64, error) {
	if _, err := s.businessRepo.FindByID(businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrBusinessNotFound
		}
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	return s.ratingRepo.ListByBusiness(businessID, offset, pageSize)
}

func (s *ratingService) GetSummary(businessID uint) (*repository.RatingSummary, error) {
	if _, err := s.businessRepo.FindByID(businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	return s.ratingRepo.Summary(businessID)
}

func (s *ratingService) DeleteRating(businessID, userID uint) error {
	deleted, err := s.ratingRepo.Delete(businessID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRatingNotFound
	}

	logger.Info("Rating deleted", map[string]interface{}{
		"business_id": businessID,
		"user_id":     userID,
	})
	return nil
}
