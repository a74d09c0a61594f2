package repository

import (
	"errors"
	"sort"

	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"github.com/vukanihub/vukani-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrEmptyUpdate = errors.New("update with zero fields rejected")

// GeoPoint is a validated search center.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// BusinessFilter is the typed predicate set for the spatial query. Statuses
// must be non-empty; callers decide the visibility policy, the repository
// never widens it on its own.
type BusinessFilter struct {
	Query    string // free-text match against the business name
	City     string
	Category string
	Statuses []model.BusinessStatus
	OwnerID  *uint

	Center   *GeoPoint // when set, rows are radius-cut and distance-sorted
	RadiusKm float64

	Page     int // 1-based
	PageSize int
}

// BusinessHit is one search row: the entity plus its distance from the
// center when a center was supplied.
type BusinessHit struct {
	Business   model.Business
	DistanceKm *float64
}

// BusinessListResult is a page of hits with exact totals.
type BusinessListResult struct {
	Hits       []BusinessHit
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

type BusinessRepository interface {
	Create(business *model.Business) error
	BulkCreate(businesses []model.Business, batchSize int) error
	Update(business *model.Business) error
	UpdateFields(id uint, fields map[string]interface{}) error
	FindAll(filter BusinessFilter) (*BusinessListResult, error)
	FindByID(id uint) (*model.Business, error)
	FindByIDWithMedia(id uint) (*model.Business, error)
	FindBySlug(slug string) (*model.Business, error)
	FindByUserID(userID uint) ([]model.Business, error)
	CountByStatus(status model.BusinessStatus) (int64, error)

	// TransitionStatus moves a business from one publication status to
	// another, applying extra fields in the same statement. It reports false
	// when the row was not in the expected source status, which is how
	// concurrent transitions lose.
	TransitionStatus(id uint, from, to model.BusinessStatus, fields map[string]interface{}) (bool, error)
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(business *model.Business) error {
	if err := r.db.Create(business).Error; err != nil {
		logger.Error("Failed to create business in database", err, map[string]interface{}{
			"name":    business.Name,
			"city":    business.City,
			"user_id": business.UserID,
		})
		return err
	}

	logger.Debug("Business created in database", map[string]interface{}{
		"business_id": business.ID,
		"slug":        business.Slug,
	})
	return nil
}

// BulkCreate inserts listings in batches. Callers must supply unique slugs:
// the per-row BeforeCreate uniquifier does not see rows from the same batch.
func (r *businessRepository) BulkCreate(businesses []model.Business, batchSize int) error {
	if err := r.db.CreateInBatches(businesses, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create businesses", err, map[string]interface{}{
			"count": len(businesses),
		})
		return err
	}
	return nil
}

func (r *businessRepository) Update(business *model.Business) error {
	if err := r.db.Save(business).Error; err != nil {
		logger.Error("Failed to update business in database", err, map[string]interface{}{
			"business_id": business.ID,
		})
		return err
	}
	return nil
}

// UpdateFields applies a partial update. An empty field map is rejected
// outright instead of being handed to the SQL builder.
func (r *businessRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return ErrEmptyUpdate
	}

	result := r.db.Model(&model.Business{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update business fields", result.Error, map[string]interface{}{
			"business_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindAll runs the spatial query. Equality predicates and a bounding-box
// prefilter are pushed to the database; the exact Haversine cut, the
// distance sort and pagination happen afterwards so totals stay exact.
func (r *businessRepository) FindAll(filter BusinessFilter) (*BusinessListResult, error) {
	logger.Debug("Finding businesses", map[string]interface{}{
		"query":     filter.Query,
		"city":      filter.City,
		"category":  filter.Category,
		"statuses":  filter.Statuses,
		"radius_km": filter.RadiusKm,
		"page":      filter.Page,
	})

	if len(filter.Statuses) == 0 {
		return nil, errors.New("business filter requires at least one status")
	}

	query := r.db.Model(&model.Business{}).Where("status IN ?", filter.Statuses)

	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.OwnerID != nil {
		query = query.Where("user_id = ?", *filter.OwnerID)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("name LIKE ?", like)
	}

	if filter.Center != nil {
		return r.findByDistance(query, filter)
	}
	return r.findByRecency(query, filter)
}

// findByRecency is the non-spatial path: newest first, totals from COUNT.
func (r *businessRepository) findByRecency(query *gorm.DB, filter BusinessFilter) (*BusinessListResult, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count businesses", err, nil)
		return nil, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	var businesses []model.Business
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.PageSize).Find(&businesses).Error; err != nil {
		logger.Error("Failed to find businesses", err, nil)
		return nil, err
	}

	hits := make([]BusinessHit, len(businesses))
	for i := range businesses {
		hits[i] = BusinessHit{Business: businesses[i]}
	}

	return &BusinessListResult{
		Hits:       hits,
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages(total, filter.PageSize),
	}, nil
}

// findByDistance is the point-radius path. The bounding box keeps the row
// set small; rows without coordinates never match a spatial search.
func (r *businessRepository) findByDistance(query *gorm.DB, filter BusinessFilter) (*BusinessListResult, error) {
	center := filter.Center
	minLat, maxLat, minLon, maxLon := util.BoundingBox(center.Latitude, center.Longitude, filter.RadiusKm)

	query = query.
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLon, maxLon)

	var candidates []model.Business
	if err := query.Find(&candidates).Error; err != nil {
		logger.Error("Failed to find businesses in bounding box", err, map[string]interface{}{
			"radius_km": filter.RadiusKm,
		})
		return nil, err
	}

	hits := make([]BusinessHit, 0, len(candidates))
	for i := range candidates {
		b := candidates[i]
		d := util.CalculateDistance(center.Latitude, center.Longitude, *b.Latitude, *b.Longitude)
		if d > filter.RadiusKm {
			continue
		}
		distance := d
		hits = append(hits, BusinessHit{Business: b, DistanceKm: &distance})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return *hits[i].DistanceKm < *hits[j].DistanceKm
	})

	total := int64(len(hits))
	start := (filter.Page - 1) * filter.PageSize
	end := start + filter.PageSize
	if start > len(hits) {
		hits = []BusinessHit{}
	} else {
		if end > len(hits) {
			end = len(hits)
		}
		hits = hits[start:end]
	}

	return &BusinessListResult{
		Hits:       hits,
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages(total, filter.PageSize),
	}, nil
}

func (r *businessRepository) FindByID(id uint) (*model.Business, error) {
	var business model.Business
	if err := r.db.First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindByIDWithMedia(id uint) (*model.Business, error) {
	var business model.Business
	err := r.db.Preload("Media", func(db *gorm.DB) *gorm.DB {
		return db.Order("media_assets.display_order ASC, media_assets.id ASC")
	}).First(&business, id).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindBySlug(slug string) (*model.Business, error) {
	var business model.Business
	if err := r.db.Where("slug = ?", slug).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindByUserID(userID uint) ([]model.Business, error) {
	var businesses []model.Business
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&businesses).Error
	if err != nil {
		logger.Error("Failed to find businesses by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return businesses, nil
}

func (r *businessRepository) CountByStatus(status model.BusinessStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Business{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// TransitionStatus is a compare-and-set on the status column. The source
// status in the WHERE clause is what serializes concurrent transitions
// without row locks.
func (r *businessRepository) TransitionStatus(id uint, from, to model.BusinessStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.Model(&model.Business{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to transition business status", result.Error, map[string]interface{}{
			"business_id": id,
			"from":        from,
			"to":          to,
		})
		return false, result.Error
	}

	if result.RowsAffected == 1 {
		logger.Info("Business status transitioned", map[string]interface{}{
			"business_id": id,
			"from":        from,
			"to":          to,
		})
	}
	return result.RowsAffected == 1, nil
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
