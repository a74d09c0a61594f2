package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/internal/app/service"
	"github.com/vukanihub/vukani-backend/internal/db"
	"github.com/vukanihub/vukani-backend/internal/middleware"
	"gorm.io/gorm"
)

type searchControllerFixture struct {
	controller *SearchController
	db         *gorm.DB
	owner      *model.User
}

func setupSearchControllerTest(t *testing.T) *searchControllerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	searchService := service.NewSearchService(
		repository.NewBusinessRepository(testDB),
		repository.NewRatingRepository(testDB),
		repository.NewFavoriteRepository(testDB),
		repository.NewMediaRepository(testDB),
		stubStorage{},
		50, 500, 100, 4,
	)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "hash", Name: "Owner", Role: model.RoleSupplier}
	require.NoError(t, testDB.Create(owner).Error)

	gin.SetMode(gin.TestMode)
	return &searchControllerFixture{
		controller: NewSearchController(searchService),
		db:         testDB,
		owner:      owner,
	}
}

func (f *searchControllerFixture) router(user *model.User) *gin.Engine {
	router := gin.New()
	if user != nil {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, user.ID)
			c.Set(middleware.UserRoleKey, user.Role)
			c.Next()
		})
	}
	router.GET("/businesses", f.controller.Search)
	router.GET("/businesses/nearby", f.controller.Nearby)
	return router
}

func (f *searchControllerFixture) seedListing(t *testing.T, name string, lat, lng float64, status model.BusinessStatus) {
	t.Helper()
	business := model.Business{
		UserID:    f.owner.ID,
		Name:      name,
		City:      "Johannesburg",
		Category:  "retail",
		Status:    status,
		Latitude:  &lat,
		Longitude: &lng,
	}
	require.NoError(t, f.db.Create(&business).Error)
}

func getSearch(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, *service.SearchResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		return w, nil
	}
	var result service.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return w, &result
}

func TestSearchController_SpatialQuery(t *testing.T) {
	f := setupSearchControllerTest(t)
	f.seedListing(t, "CBD Store", -26.2041, 28.0473, model.BusinessStatusActive)
	f.seedListing(t, "Sandton Store", -26.1076, 28.0567, model.BusinessStatusActive)
	f.seedListing(t, "Durban Store", -29.8587, 31.0218, model.BusinessStatusActive)
	f.seedListing(t, "Unreviewed Store", -26.2041, 28.0473, model.BusinessStatusPending)

	router := f.router(nil)
	w, result := getSearch(t, router, "/businesses?lat=-26.2041&lng=28.0473&radius_km=30")
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, int64(2), result.TotalCount)
	assert.Equal(t, "CBD Store", result.Items[0].Business.Name)
	assert.Equal(t, "Sandton Store", result.Items[1].Business.Name)
	require.NotNil(t, result.Items[1].DistanceKm)
	assert.InDelta(t, 10.7, *result.Items[1].DistanceKm, 1.0)
}

func TestSearchController_RejectsHalfCoordinates(t *testing.T) {
	f := setupSearchControllerTest(t)
	router := f.router(nil)

	w, _ := getSearch(t, router, "/businesses?lat=-26.2041")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = getSearch(t, router, "/businesses?lat=abc&lng=28.0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchController_StatusFilterIsPrivileged(t *testing.T) {
	f := setupSearchControllerTest(t)
	f.seedListing(t, "Pending Store", -26.2041, 28.0473, model.BusinessStatusPending)

	// Guests may not filter by non-public status.
	w, _ := getSearch(t, f.router(nil), "/businesses?status=pending")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An owner may, scoped to their own listings.
	path := fmt.Sprintf("/businesses?status=pending&owner_id=%d", f.owner.ID)
	w, result := getSearch(t, f.router(f.owner), path)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), result.TotalCount)

	// An admin may filter globally.
	admin := &model.User{Email: "admin@example.com", PasswordHash: "hash", Name: "Admin", Role: model.RoleAdmin}
	require.NoError(t, f.db.Create(admin).Error)
	w, result = getSearch(t, f.router(admin), "/businesses?status=pending")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), result.TotalCount)
}

func TestSearchController_NearbyUsesMeters(t *testing.T) {
	f := setupSearchControllerTest(t)
	f.seedListing(t, "CBD Store", -26.2041, 28.0473, model.BusinessStatusActive)
	f.seedListing(t, "Sandton Store", -26.1076, 28.0567, model.BusinessStatusActive)

	router := f.router(nil)
	w, result := getSearch(t, router, "/businesses/nearby?lat=-26.2041&lng=28.0473&radius=2000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), result.TotalCount)

	w, _ = getSearch(t, router, "/businesses/nearby?lng=28.0473")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchController_NearbyDefaultsToStandardRadius(t *testing.T) {
	f := setupSearchControllerTest(t)
	f.seedListing(t, "CBD Store", -26.2041, 28.0473, model.BusinessStatusActive)
	f.seedListing(t, "Sandton Store", -26.1076, 28.0567, model.BusinessStatusActive) // ~10.7km out
	f.seedListing(t, "Durban Store", -29.8587, 31.0218, model.BusinessStatusActive)

	// No radius: the 50km search default applies, not a tighter map-view one.
	router := f.router(nil)
	w, result := getSearch(t, router, "/businesses/nearby?lat=-26.2041&lng=28.0473")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), result.TotalCount)
}
