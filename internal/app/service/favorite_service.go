package service

import (
	"errors"

	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"gorm.io/gorm"
)

type FavoriteService interface {
	AddFavorite(userID, businessID uint) (*model.Favorite, error)
	RemoveFavorite(userID, businessID uint) error
	ListFavorites(userID uint, page, pageSize int) ([]model.Favorite, int64, error)
	IsFavorited(userID, businessID uint) (bool, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	businessRepo repository.BusinessRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, businessRepo repository.BusinessRepository) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		businessRepo: businessRepo,
	}
}

// AddFavorite marks the business for the user. Re-adding an existing
// favorite succeeds and returns the original row.
func (s *favoriteService) AddFavorite(userID, businessID uint) (*model.Favorite, error) {
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

	favorite, err := s.favoriteRepo.Add(&model.Favorite{
		UserID:     userID,
		BusinessID: businessID,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Favorite added", map[string]interface{}{
		"user_id":     userID,
		"business_id": businessID,
	})

	return favorite, nil
}

// RemoveFavorite is idempotent: removing an absent favorite is a no-op.
func (s *favoriteService) RemoveFavorite(userID, businessID uint) error {
	return s.favoriteRepo.Remove(userID, businessID)
}

// ListFavorites returns the user's favorites whose business is still active.
// Favorites of suspended or archived listings stay on record but are hidden
// until the listing returns.
func (s *favoriteService) ListFavorites(userID uint, page, pageSize int) ([]model.Favorite, int64, error) {
	offset := (page - 1) * pageSize
	return s.favoriteRepo.ListActiveByUser(userID, offset, pageSize)
}

func (s *favoriteService) IsFavorited(userID, businessID uint) (bool, error) {
	return s.favoriteRepo.IsFavorited(userID, businessID)
}
