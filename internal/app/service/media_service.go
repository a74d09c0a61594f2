package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrMediaNotFound      = errors.New("media not found")
	ErrLogoAlreadyExists  = errors.New("business already has a logo")
	ErrPhotoLimitReached  = errors.New("photo limit reached")
	ErrInvalidMediaType   = errors.New("invalid media type")
	ErrInvalidContentType = errors.New("unsupported content type")
	ErrFileTooLarge       = errors.New("file exceeds the size limit")
)

const maxMediaSizeBytes = 10 << 20 // 10 MiB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadTicket is the client's instruction set for a direct-to-storage
// upload: PUT the bytes to URL, then confirm with StoragePath.
type UploadTicket struct {
	UploadURL   string `json:"upload_url"`
	StoragePath string `json:"storage_path"`
}

type SaveMediaInput struct {
	StoragePath string `json:"storage_path" binding:"required"`
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes"`
}

// MediaView is a media record with its short-lived download URL. URL is
// empty when resolution failed; the record itself is still reported.
type MediaView struct {
	Asset model.MediaAsset `json:"asset"`
	URL   string           `json:"url,omitempty"`
}

type MediaService interface {
	RequestUpload(ctx context.Context, businessID, userID uint, isAdmin bool, mediaType model.MediaType, contentType string) (*UploadTicket, error)
	SaveRecord(businessID, userID uint, isAdmin bool, mediaType model.MediaType, input SaveMediaInput) (*model.MediaAsset, error)
	ListMedia(ctx context.Context, businessID uint) ([]MediaView, error)
	ResolveDownloadURL(ctx context.Context, mediaID uint) (string, error)
	DeleteMedia(ctx context.Context, mediaID, userID uint, isAdmin bool) error
	SweepOrphans(ctx context.Context, batchSize int) (int, error)
}

type mediaService struct {
	db           *gorm.DB
	mediaRepo    repository.MediaRepository
	businessRepo repository.BusinessRepository
	storage      ObjectStorage
}

func NewMediaService(
	db *gorm.DB,
	mediaRepo repository.MediaRepository,
	businessRepo repository.BusinessRepository,
	storage ObjectStorage,
) MediaService {
	return &mediaService{
		db:           db,
		mediaRepo:    mediaRepo,
		businessRepo: businessRepo,
		storage:      storage,
	}
}

// RequestUpload validates the intent and issues a presigned PUT. No record
// is created yet; an abandoned upload leaves at most an unreferenced object.
func (s *mediaService) RequestUpload(ctx context.Context, businessID, userID uint, isAdmin bool, mediaType model.MediaType, contentType string) (*UploadTicket, error) {
	if mediaType != model.MediaTypeLogo && mediaType != model.MediaTypePhoto {
		return nil, ErrInvalidMediaType
	}

	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, ErrInvalidContentType
	}

	business, err := s.ownedBusiness(businessID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	if business.Status == model.BusinessStatusArchived {
		return nil, ErrBusinessArchived
	}

	key := fmt.Sprintf("businesses/%d/%s/%s%s", businessID, mediaType, uuid.New().String(), ext)

	url, err := s.storage.PresignUpload(ctx, key, contentType)
	if err != nil {
		logger.Error("Failed to presign upload", err, map[string]interface{}{
			"business_id": businessID,
			"media_type":  mediaType,
		})
		return nil, err
	}

	return &UploadTicket{UploadURL: url, StoragePath: key}, nil
}

// SaveRecord confirms a completed upload. The cap check and the insert run
// in one transaction so concurrent confirmations cannot both pass the count.
func (s *mediaService) SaveRecord(businessID, userID uint, isAdmin bool, mediaType model.MediaType, input SaveMediaInput) (*model.MediaAsset, error) {
	if mediaType != model.MediaTypeLogo && mediaType != model.MediaTypePhoto {
		return nil, ErrInvalidMediaType
	}
	if _, ok := allowedImageTypes[input.ContentType]; !ok {
		return nil, ErrInvalidContentType
	}
	if input.SizeBytes > maxMediaSizeBytes {
		return nil, ErrFileTooLarge
	}
	if !strings.HasPrefix(input.StoragePath, fmt.Sprintf("businesses/%d/", businessID)) {
		// The key must be one this business was issued.
		return nil, ErrInvalidMediaType
	}

	if _, err := s.ownedBusiness(businessID, userID, isAdmin); err != nil {
		return nil, err
	}

	asset := &model.MediaAsset{
		BusinessID:  businessID,
		MediaType:   mediaType,
		StoragePath: input.StoragePath,
		FileName:    path.Base(input.FileName),
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.mediaRepo.WithTx(tx)

		count, err := repo.CountByBusinessAndType(businessID, mediaType)
		if err != nil {
			return err
		}

		switch mediaType {
		case model.MediaTypeLogo:
			if count >= model.MaxLogosPerBusiness {
				return ErrLogoAlreadyExists
			}
		case model.MediaTypePhoto:
			if count >= model.MaxPhotosPerBusiness {
				return ErrPhotoLimitReached
			}
			asset.DisplayOrder = int(count)
		}

		return repo.Create(asset)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Media record saved", map[string]interface{}{
		"business_id": businessID,
		"media_id":    asset.ID,
		"media_type":  mediaType,
	})

	return asset, nil
}

func (s *mediaService) ListMedia(ctx context.Context, businessID uint) ([]MediaView, error) {
	assets, err := s.mediaRepo.FindByBusiness(businessID)
	if err != nil {
		return nil, err
	}

	views := make([]MediaView, 0, len(assets))
	for _, asset := range assets {
		view := MediaView{Asset: asset}
		url, err := s.storage.PresignDownload(ctx, asset.StoragePath)
		if err != nil {
			logger.Warn("Failed to presign download URL", map[string]interface{}{
				"media_id": asset.ID,
				"error":    err.Error(),
			})
		} else {
			view.URL = url
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *mediaService) ResolveDownloadURL(ctx context.Context, mediaID uint) (string, error) {
	asset, err := s.mediaRepo.FindByID(mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrMediaNotFound
		}
		return "", err
	}

	return s.storage.PresignDownload(ctx, asset.StoragePath)
}

// DeleteMedia removes the record first, then the object best-effort. When
// the storage delete fails, the key goes on the orphan list for the sweep
// job instead of resurrecting the record.
func (s *mediaService) DeleteMedia(ctx context.Context, mediaID, userID uint, isAdmin bool) error {
	asset, err := s.mediaRepo.FindByID(mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}

	if _, err := s.ownedBusiness(asset.BusinessID, userID, isAdmin); err != nil {
		return err
	}

	if err := s.mediaRepo.Delete(mediaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}

	if err := s.storage.DeleteObject(ctx, asset.StoragePath); err != nil {
		logger.Warn("Storage delete failed, recording orphan", map[string]interface{}{
			"storage_path": asset.StoragePath,
			"error":        err.Error(),
		})
		if recordErr := s.mediaRepo.RecordOrphan(asset.StoragePath, err.Error()); recordErr != nil {
			logger.Error("Failed to record orphaned object", recordErr, map[string]interface{}{
				"storage_path": asset.StoragePath,
			})
		}
	}

	logger.Info("Media deleted", map[string]interface{}{
		"media_id":    mediaID,
		"business_id": asset.BusinessID,
	})
	return nil
}

// SweepOrphans retries storage deletes for recorded orphans. It returns the
// number of objects actually reclaimed.
func (s *mediaService) SweepOrphans(ctx context.Context, batchSize int) (int, error) {
	orphans, err := s.mediaRepo.ListOrphans(batchSize)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, orphan := range orphans {
		if err := s.storage.DeleteObject(ctx, orphan.StoragePath); err != nil {
			if touchErr := s.mediaRepo.TouchOrphan(orphan.ID, err.Error()); touchErr != nil {
				logger.Error("Failed to update orphan record", touchErr, map[string]interface{}{
					"orphan_id": orphan.ID,
				})
			}
			continue
		}
		if err := s.mediaRepo.ResolveOrphan(orphan.ID); err != nil {
			logger.Error("Failed to resolve orphan record", err, map[string]interface{}{
				"orphan_id": orphan.ID,
			})
			continue
		}
		reclaimed++
	}

	if len(orphans) > 0 {
		logger.Info("Orphan sweep finished", map[string]interface{}{
			"examined":  len(orphans),
			"reclaimed": reclaimed,
		})
	}

	return reclaimed, nil
}

func (s *mediaService) ownedBusiness(businessID, userID uint, isAdmin bool) (*model.Business, error) {
	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if business.UserID != userID && !isAdmin {
		return nil, ErrBusinessAccessDenied
	}
	return business, nil
}
