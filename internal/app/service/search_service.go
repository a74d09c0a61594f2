package service

import (
	"context"
	"errors"
	"sync"

	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"github.com/vukanihub/vukani-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrStatusFilterDenied = errors.New("status filter requires elevated access")

const (
	defaultPageSize      = 20
	minRadiusKm          = 1.0
	defaultEnrichWorkers = 8
)

// SearchOptions is the full query surface of the discovery endpoint.
// Zero values mean "not filtered"; clamping happens inside Search, so
// callers can pass raw request input.
type SearchOptions struct {
	Query    string
	City     string
	Category string

	Latitude  *float64
	Longitude *float64
	RadiusKm  float64

	// Status narrows beyond the public default of active-only listings.
	// Non-public statuses are visible to admins, and to owners scoped to
	// their own listings via OwnerID.
	Status             *model.BusinessStatus
	IncludeAllStatuses bool // admin-only escape hatch
	OwnerID            *uint

	Page     int
	PageSize int
}

// Viewer identifies who is searching. A nil UserID is an anonymous request.
type Viewer struct {
	UserID  *uint
	IsAdmin bool
}

// SearchItem is one enriched result row. Enrichment is best-effort: a failed
// logo resolution or favorite lookup leaves the zero value, never drops the
// row.
type SearchItem struct {
	Business    model.Business           `json:"business"`
	DistanceKm  *float64                 `json:"distance_km,omitempty"`
	Rating      repository.RatingSummary `json:"rating"`
	IsFavorited bool                     `json:"is_favorited"`
	LogoURL     string                   `json:"logo_url,omitempty"`
}

type SearchResult struct {
	Items      []SearchItem `json:"items"`
	TotalCount int64        `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

type SearchService interface {
	Search(ctx context.Context, opts SearchOptions, viewer Viewer) (*SearchResult, error)
	Nearby(ctx context.Context, latitude, longitude float64, radiusMeters float64, viewer Viewer) (*SearchResult, error)
}

type searchService struct {
	businessRepo repository.BusinessRepository
	ratingRepo   repository.RatingRepository
	favoriteRepo repository.FavoriteRepository
	mediaRepo    repository.MediaRepository
	storage      ObjectStorage

	defaultRadiusKm float64
	maxRadiusKm     float64
	maxPageSize     int
	workers         int
}

func NewSearchService(
	businessRepo repository.BusinessRepository,
	ratingRepo repository.RatingRepository,
	favoriteRepo repository.FavoriteRepository,
	mediaRepo repository.MediaRepository,
	storage ObjectStorage,
	defaultRadiusKm, maxRadiusKm float64,
	maxPageSize, workers int,
) SearchService {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 50
	}
	if maxRadiusKm <= 0 {
		maxRadiusKm = 500
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	if workers <= 0 {
		workers = defaultEnrichWorkers
	}
	return &searchService{
		businessRepo:    businessRepo,
		ratingRepo:      ratingRepo,
		favoriteRepo:    favoriteRepo,
		mediaRepo:       mediaRepo,
		storage:         storage,
		defaultRadiusKm: defaultRadiusKm,
		maxRadiusKm:     maxRadiusKm,
		maxPageSize:     maxPageSize,
		workers:         workers,
	}
}

func (s *searchService) Search(ctx context.Context, opts SearchOptions, viewer Viewer) (*SearchResult, error) {
	filter, err := s.buildFilter(opts, viewer)
	if err != nil {
		return nil, err
	}

	page, err := s.businessRepo.FindAll(*filter)
	if err != nil {
		return nil, err
	}

	items := s.enrich(ctx, page.Hits, viewer)

	logger.Debug("Search completed", map[string]interface{}{
		"total":   page.TotalCount,
		"page":    page.Page,
		"results": len(items),
	})

	return &SearchResult{
		Items:      items,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Nearby is the map-view shorthand: point plus radius in meters, no text
// filters.
func (s *searchService) Nearby(ctx context.Context, latitude, longitude float64, radiusMeters float64, viewer Viewer) (*SearchResult, error) {
	return s.Search(ctx, SearchOptions{
		Latitude:  &latitude,
		Longitude: &longitude,
		RadiusKm:  radiusMeters / 1000,
	}, viewer)
}

// buildFilter validates and clamps raw options into a repository filter and
// applies the status visibility policy.
func (s *searchService) buildFilter(opts SearchOptions, viewer Viewer) (*repository.BusinessFilter, error) {
	statuses, err := s.resolveStatuses(opts, viewer)
	if err != nil {
		return nil, err
	}

	filter := &repository.BusinessFilter{
		Query:    opts.Query,
		City:     opts.City,
		Category: opts.Category,
		Statuses: statuses,
		OwnerID:  opts.OwnerID,
		Page:     opts.Page,
		PageSize: opts.PageSize,
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > s.maxPageSize {
		filter.PageSize = s.maxPageSize
	}

	if (opts.Latitude == nil) != (opts.Longitude == nil) {
		return nil, ErrInvalidCoordinates
	}
	if opts.Latitude != nil {
		if !util.ValidCoordinates(*opts.Latitude, *opts.Longitude) {
			return nil, ErrInvalidCoordinates
		}

		radius := opts.RadiusKm
		if radius <= 0 {
			radius = s.defaultRadiusKm
		}
		if radius < minRadiusKm {
			radius = minRadiusKm
		}
		if radius > s.maxRadiusKm {
			radius = s.maxRadiusKm
		}

		filter.Center = &repository.GeoPoint{
			Latitude:  *opts.Latitude,
			Longitude: *opts.Longitude,
		}
		filter.RadiusKm = radius
	}

	return filter, nil
}

// resolveStatuses enforces who may see what. The public sees active
// listings only; owners may additionally scope a status filter to their own
// listings; admins see anything they ask for.
func (s *searchService) resolveStatuses(opts SearchOptions, viewer Viewer) ([]model.BusinessStatus, error) {
	if opts.IncludeAllStatuses {
		if !viewer.IsAdmin {
			return nil, ErrStatusFilterDenied
		}
		return []model.BusinessStatus{
			model.BusinessStatusDraft,
			model.BusinessStatusPending,
			model.BusinessStatusActive,
			model.BusinessStatusSuspended,
			model.BusinessStatusArchived,
		}, nil
	}

	if opts.Status == nil {
		return []model.BusinessStatus{model.BusinessStatusActive}, nil
	}

	if *opts.Status == model.BusinessStatusActive || viewer.IsAdmin {
		return []model.BusinessStatus{*opts.Status}, nil
	}

	// Owners may inspect their own non-active listings, but only when the
	// query is pinned to them.
	ownScoped := opts.OwnerID != nil && viewer.UserID != nil && *opts.OwnerID == *viewer.UserID
	if !ownScoped {
		return nil, ErrStatusFilterDenied
	}
	return []model.BusinessStatus{*opts.Status}, nil
}

// enrich attaches rating summaries, favorite flags and logo URLs to a page
// of hits. Summaries come back in one query; per-row storage and favorite
// lookups fan out across a bounded worker pool.
func (s *searchService) enrich(ctx context.Context, hits []repository.BusinessHit, viewer Viewer) []SearchItem {
	items := make([]SearchItem, len(hits))
	if len(hits) == 0 {
		return items
	}

	ids := make([]uint, len(hits))
	for i, hit := range hits {
		ids[i] = hit.Business.ID
		items[i] = SearchItem{
			Business:   hit.Business,
			DistanceKm: hit.DistanceKm,
		}
	}

	summaries, err := s.ratingRepo.BatchSummaries(ids)
	if err != nil {
		logger.Warn("Failed to load rating summaries for search page", map[string]interface{}{
			"error": err.Error(),
		})
		summaries = map[uint]repository.RatingSummary{}
	}
	for i := range items {
		if summary, ok := summaries[items[i].Business.ID]; ok {
			items[i].Rating = summary
		}
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)

	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			s.enrichItem(ctx, &items[idx], viewer)
		}(i)
	}
	wg.Wait()

	return items
}

// enrichItem fills the per-row extras. Failures degrade the single row and
// are logged, never propagated.
func (s *searchService) enrichItem(ctx context.Context, item *SearchItem, viewer Viewer) {
	businessID := item.Business.ID

	logo, err := s.mediaRepo.FindLogoByBusiness(businessID)
	switch {
	case err == nil:
		url, presignErr := s.storage.PresignDownload(ctx, logo.StoragePath)
		if presignErr != nil {
			logger.Warn("Failed to presign logo URL", map[string]interface{}{
				"business_id": businessID,
				"error":       presignErr.Error(),
			})
		} else {
			item.LogoURL = url
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		// No logo is the common case; anything else is infrastructure.
		logger.Warn("Failed to look up logo", map[string]interface{}{
			"business_id": businessID,
			"error":       err.Error(),
		})
	}

	if viewer.UserID != nil {
		favorited, err := s.favoriteRepo.IsFavorited(*viewer.UserID, businessID)
		if err != nil {
			logger.Warn("Failed to resolve favorite flag", map[string]interface{}{
				"business_id": businessID,
				"user_id":     *viewer.UserID,
				"error":       err.Error(),
			})
		} else {
			item.IsFavorited = favorited
		}
	}
}
