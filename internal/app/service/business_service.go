package service

import (
	"context"
	"errors"
	"time"

	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"github.com/vukanihub/vukani-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrBusinessNotFound     = errors.New("business not found")
	ErrBusinessAccessDenied = errors.New("business access denied")
	ErrBusinessArchived     = errors.New("business is archived")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
)

type CreateBusinessInput struct {
	Name        string   `json:"name" binding:"required,min=2,max=120"`
	Description string   `json:"description"`
	Category    string   `json:"category" binding:"required"`
	Tags        []string `json:"tags"`
	City        string   `json:"city" binding:"required"`
	Suburb      string   `json:"suburb"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	PhoneNumber string   `json:"phone_number"`
	Website     string   `json:"website"`
	OpenTime    string   `json:"open_time"`
	CloseTime   string   `json:"close_time"`
}

type UpdateBusinessInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	City        *string  `json:"city"`
	Suburb      *string  `json:"suburb"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	PhoneNumber *string  `json:"phone_number"`
	Website     *string  `json:"website"`
	OpenTime    *string  `json:"open_time"`
	CloseTime   *string  `json:"close_time"`
}

// BusinessDetail is the enriched single-listing payload.
type BusinessDetail struct {
	Business      model.Business           `json:"business"`
	Rating        repository.RatingSummary `json:"rating"`
	FavoriteCount int64                    `json:"favorite_count"`
	IsFavorited   bool                     `json:"is_favorited"`
	LogoURL       string                   `json:"logo_url,omitempty"`
	PhotoURLs     []string                 `json:"photo_urls,omitempty"`
}

type BusinessService interface {
	CreateBusiness(userID uint, input CreateBusinessInput) (*model.Business, error)
	UpdateBusiness(businessID, userID uint, isAdmin bool, input UpdateBusinessInput) (*model.Business, error)
	GetBusiness(businessID uint, viewerID *uint, isAdmin bool) (*model.Business, error)
	GetBusinessDetail(ctx context.Context, businessID uint, viewerID *uint, isAdmin bool) (*BusinessDetail, error)
	GetMyBusinesses(userID uint) ([]model.Business, error)

	// Publication lifecycle.
	Publish(businessID, userID uint) (*model.Business, error)
	Approve(businessID uint) (*model.Business, error)
	Reject(businessID uint, reason string) (*model.Business, error)
	Suspend(businessID uint) (*model.Business, error)
	Reactivate(businessID uint) (*model.Business, error)
	Archive(businessID, userID uint, isAdmin bool) (*model.Business, error)

	// ModerationStats reports how many listings sit in each publication
	// status, for the admin dashboard.
	ModerationStats() (map[model.BusinessStatus]int64, error)
}

type businessService struct {
	businessRepo repository.BusinessRepository
	ratingRepo   repository.RatingRepository
	favoriteRepo repository.FavoriteRepository
	mediaRepo    repository.MediaRepository
	storage      ObjectStorage
}

func NewBusinessService(
	businessRepo repository.BusinessRepository,
	ratingRepo repository.RatingRepository,
	favoriteRepo repository.FavoriteRepository,
	mediaRepo repository.MediaRepository,
	storage ObjectStorage,
) BusinessService {
	return &businessService{
		businessRepo: businessRepo,
		ratingRepo:   ratingRepo,
		favoriteRepo: favoriteRepo,
		mediaRepo:    mediaRepo,
		storage:      storage,
	}
}

func (s *businessService) CreateBusiness(userID uint, input CreateBusinessInput) (*model.Business, error) {
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, ErrInvalidCoordinates
	}
	if input.Latitude != nil && !util.ValidCoordinates(*input.Latitude, *input.Longitude) {
		return nil, ErrInvalidCoordinates
	}

	business := &model.Business{
		UserID:             userID,
		Name:               input.Name,
		Description:        input.Description,
		Category:           input.Category,
		Tags:               input.Tags,
		City:               input.City,
		Suburb:             input.Suburb,
		Address:            input.Address,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		PhoneNumber:        input.PhoneNumber,
		Website:            input.Website,
		OpenTime:           input.OpenTime,
		CloseTime:          input.CloseTime,
		Status:             model.BusinessStatusDraft,
		VerificationStatus: model.VerificationPending,
	}

	if err := s.businessRepo.Create(business); err != nil {
		return nil, err
	}

	logger.Info("Business created", map[string]interface{}{
		"business_id": business.ID,
		"user_id":     userID,
		"city":        business.City,
	})

	return business, nil
}

func (s *businessService) UpdateBusiness(businessID, userID uint, isAdmin bool, input UpdateBusinessInput) (*model.Business, error) {
	business, err := s.findBusiness(businessID)
	if err != nil {
		return nil, err
	}

	if business.UserID != userID && !isAdmin {
		return nil, ErrBusinessAccessDenied
	}
	if business.Status == model.BusinessStatusArchived {
		return nil, ErrBusinessArchived
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.Tags != nil {
		fields["tags"] = model.StringArray(input.Tags)
	}
	if input.City != nil {
		fields["city"] = *input.City
	}
	if input.Suburb != nil {
		fields["suburb"] = *input.Suburb
	}
	if input.Address != nil {
		fields["address"] = *input.Address
	}
	if input.PhoneNumber != nil {
		fields["phone_number"] = *input.PhoneNumber
	}
	if input.Website != nil {
		fields["website"] = *input.Website
	}
	if input.OpenTime != nil {
		fields["open_time"] = *input.OpenTime
	}
	if input.CloseTime != nil {
		fields["close_time"] = *input.CloseTime
	}

	// Coordinates move together or not at all.
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, ErrInvalidCoordinates
	}
	if input.Latitude != nil {
		if !util.ValidCoordinates(*input.Latitude, *input.Longitude) {
			return nil, ErrInvalidCoordinates
		}
		fields["latitude"] = *input.Latitude
		fields["longitude"] = *input.Longitude
	}

	if len(fields) == 0 {
		// Nothing to change; return the current state rather than erroring.
		return business, nil
	}

	if err := s.businessRepo.UpdateFields(businessID, fields); err != nil {
		return nil, err
	}

	return s.findBusiness(businessID)
}

func (s *businessService) GetBusiness(businessID uint, viewerID *uint, isAdmin bool) (*model.Business, error) {
	business, err := s.businessRepo.FindByIDWithMedia(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	// Restricted listings are indistinguishable from absent ones.
	if !business.VisibleTo(viewerID, isAdmin) {
		return nil, ErrBusinessNotFound
	}

	return business, nil
}

// GetBusinessDetail assembles the enriched payload. Media URL resolution is
// best-effort: a storage outage degrades the response instead of failing it.
func (s *businessService) GetBusinessDetail(ctx context.Context, businessID uint, viewerID *uint, isAdmin bool) (*BusinessDetail, error) {
	business, err := s.GetBusiness(businessID, viewerID, isAdmin)
	if err != nil {
		return nil, err
	}

	detail := &BusinessDetail{Business: *business}

	summary, err := s.ratingRepo.Summary(businessID)
	if err != nil {
		logger.Warn("Failed to load rating summary for detail", map[string]interface{}{
			"business_id": businessID,
			"error":       err.Error(),
		})
	} else {
		detail.Rating = *summary
	}

	count, err := s.favoriteRepo.CountForBusiness(businessID)
	if err == nil {
		detail.FavoriteCount = count
	}

	if viewerID != nil {
		favorited, err := s.favoriteRepo.IsFavorited(*viewerID, businessID)
		if err == nil {
			detail.IsFavorited = favorited
		}
	}

	for _, asset := range business.Media {
		url, err := s.storage.PresignDownload(ctx, asset.StoragePath)
		if err != nil {
			logger.Warn("Failed to presign media URL for detail", map[string]interface{}{
				"business_id": businessID,
				"media_id":    asset.ID,
				"error":       err.Error(),
			})
			continue
		}
		switch asset.MediaType {
		case model.MediaTypeLogo:
			detail.LogoURL = url
		case model.MediaTypePhoto:
			detail.PhotoURLs = append(detail.PhotoURLs, url)
		}
	}

	return detail, nil
}

func (s *businessService) GetMyBusinesses(userID uint) ([]model.Business, error) {
	return s.businessRepo.FindByUserID(userID)
}

// Publish submits a draft for review.
func (s *businessService) Publish(businessID, userID uint) (*model.Business, error) {
	business, err := s.findBusiness(businessID)
	if err != nil {
		return nil, err
	}
	if business.UserID != userID {
		return nil, ErrBusinessAccessDenied
	}

	return s.transition(businessID, model.BusinessStatusDraft, model.BusinessStatusPending, nil)
}

// Approve activates a pending listing. PublishedAt is stamped on the first
// activation only; re-approvals after later edits keep the original date.
func (s *businessService) Approve(businessID uint) (*model.Business, error) {
	business, err := s.findBusiness(businessID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"rejection_reason": ""}
	if business.PublishedAt == nil {
		fields["published_at"] = time.Now()
	}

	return s.transition(businessID, model.BusinessStatusPending, model.BusinessStatusActive, fields)
}

// Reject sends a pending listing back to draft with the reviewer's reason.
func (s *businessService) Reject(businessID uint, reason string) (*model.Business, error) {
	return s.transition(businessID, model.BusinessStatusPending, model.BusinessStatusDraft, map[string]interface{}{
		"rejection_reason": reason,
	})
}

func (s *businessService) Suspend(businessID uint) (*model.Business, error) {
	return s.transition(businessID, model.BusinessStatusActive, model.BusinessStatusSuspended, nil)
}

func (s *businessService) Reactivate(businessID uint) (*model.Business, error) {
	return s.transition(businessID, model.BusinessStatusSuspended, model.BusinessStatusActive, nil)
}

// Archive is terminal and available from any prior status.
func (s *businessService) Archive(businessID, userID uint, isAdmin bool) (*model.Business, error) {
	business, err := s.findBusiness(businessID)
	if err != nil {
		return nil, err
	}
	if business.UserID != userID && !isAdmin {
		return nil, ErrBusinessAccessDenied
	}
	if business.Status == model.BusinessStatusArchived {
		return nil, ErrInvalidTransition
	}

	return s.transition(businessID, business.Status, model.BusinessStatusArchived, map[string]interface{}{
		"archived_at": time.Now(),
	})
}

func (s *businessService) ModerationStats() (map[model.BusinessStatus]int64, error) {
	stats := make(map[model.BusinessStatus]int64, 5)
	for _, status := range []model.BusinessStatus{
		model.BusinessStatusDraft,
		model.BusinessStatusPending,
		model.BusinessStatusActive,
		model.BusinessStatusSuspended,
		model.BusinessStatusArchived,
	} {
		count, err := s.businessRepo.CountByStatus(status)
		if err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, nil
}

func (s *businessService) findBusiness(businessID uint) (*model.Business, error) {
	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

func (s *businessService) transition(businessID uint, from, to model.BusinessStatus, fields map[string]interface{}) (*model.Business, error) {
	ok, err := s.businessRepo.TransitionStatus(businessID, from, to, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Either the row vanished or it was not in the expected status.
		current, err := s.findBusiness(businessID)
		if err != nil {
			return nil, err
		}
		logger.Warn("Status transition rejected", map[string]interface{}{
			"business_id": businessID,
			"expected":    from,
			"actual":      current.Status,
			"target":      to,
		})
		return nil, ErrInvalidTransition
	}

	return s.findBusiness(businessID)
}
