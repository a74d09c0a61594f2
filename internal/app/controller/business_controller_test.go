package controller

import (
	"bytes"
	"context"
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

// stubStorage satisfies service.ObjectStorage for controller tests.
type stubStorage struct{}

func (stubStorage) PresignUpload(_ context.Context, key, _ string) (string, error) {
	return "https://storage.test/upload/" + key, nil
}

func (stubStorage) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://storage.test/get/" + key, nil
}

func (stubStorage) DeleteObject(context.Context, string) error { return nil }

type businessControllerFixture struct {
	controller *BusinessController
	db         *gorm.DB
	owner      *model.User
	admin      *model.User
}

func setupBusinessControllerTest(t *testing.T) *businessControllerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	businessService := service.NewBusinessService(
		repository.NewBusinessRepository(testDB),
		repository.NewRatingRepository(testDB),
		repository.NewFavoriteRepository(testDB),
		repository.NewMediaRepository(testDB),
		stubStorage{},
	)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "hash", Name: "Owner", Role: model.RoleSupplier}
	require.NoError(t, testDB.Create(owner).Error)
	admin := &model.User{Email: "admin@example.com", PasswordHash: "hash", Name: "Admin", Role: model.RoleAdmin}
	require.NoError(t, testDB.Create(admin).Error)

	gin.SetMode(gin.TestMode)
	return &businessControllerFixture{
		controller: NewBusinessController(businessService),
		db:         testDB,
		owner:      owner,
		admin:      admin,
	}
}

// routerAs builds a router whose requests carry the given identity.
func (f *businessControllerFixture) routerAs(user *model.User) *gin.Engine {
	router := gin.New()
	if user != nil {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, user.ID)
			c.Set(middleware.UserRoleKey, user.Role)
			c.Next()
		})
	}

	router.POST("/businesses", f.controller.Create)
	router.GET("/businesses/:id", f.controller.Get)
	router.POST("/businesses/:id/publish", f.controller.Publish)
	router.POST("/admin/businesses/:id/approve", f.controller.Approve)
	router.POST("/admin/businesses/:id/reject", f.controller.Reject)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBusinessController_CreateAndModerationFlow(t *testing.T) {
	f := setupBusinessControllerTest(t)
	ownerRouter := f.routerAs(f.owner)
	adminRouter := f.routerAs(f.admin)

	w := postJSON(t, ownerRouter, "/businesses", gin.H{
		"name":     "Zola's Shisanyama",
		"category": "restaurant",
		"city":     "Soweto",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Business model.Business `json:"business"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, model.BusinessStatusDraft, created.Business.Status)
	assert.NotEmpty(t, created.Business.Slug)
	id := created.Business.ID

	// Approving a draft is premature.
	w = postJSON(t, adminRouter, fmt.Sprintf("/admin/businesses/%d/approve", id), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(t, ownerRouter, fmt.Sprintf("/businesses/%d/publish", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, adminRouter, fmt.Sprintf("/admin/businesses/%d/approve", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var business model.Business
	require.NoError(t, f.db.First(&business, id).Error)
	assert.Equal(t, model.BusinessStatusActive, business.Status)
	assert.NotNil(t, business.PublishedAt)
}

func TestBusinessController_RejectRequiresReason(t *testing.T) {
	f := setupBusinessControllerTest(t)
	ownerRouter := f.routerAs(f.owner)
	adminRouter := f.routerAs(f.admin)

	w := postJSON(t, ownerRouter, "/businesses", gin.H{
		"name":     "Zola's Shisanyama",
		"category": "restaurant",
		"city":     "Soweto",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Business model.Business `json:"business"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Business.ID

	w = postJSON(t, ownerRouter, fmt.Sprintf("/businesses/%d/publish", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, adminRouter, fmt.Sprintf("/admin/businesses/%d/reject", id), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, adminRouter, fmt.Sprintf("/admin/businesses/%d/reject", id), gin.H{
		"reason": "address could not be confirmed",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var business model.Business
	require.NoError(t, f.db.First(&business, id).Error)
	assert.Equal(t, model.BusinessStatusDraft, business.Status)
	assert.Equal(t, "address could not be confirmed", business.RejectionReason)
}

func TestBusinessController_CreateValidation(t *testing.T) {
	f := setupBusinessControllerTest(t)
	ownerRouter := f.routerAs(f.owner)

	// Binding failures: short name, missing category.
	w := postJSON(t, ownerRouter, "/businesses", gin.H{"name": "Z", "category": "spaza", "city": "Soweto"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, ownerRouter, "/businesses", gin.H{"name": "Zola's", "city": "Soweto"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// One coordinate without the other.
	w = postJSON(t, ownerRouter, "/businesses", gin.H{
		"name": "Zola's", "category": "spaza", "city": "Soweto", "latitude": -26.2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBusinessController_GetHidesForeignDrafts(t *testing.T) {
	f := setupBusinessControllerTest(t)

	business := &model.Business{
		UserID: f.owner.ID,
		Name:   "Hidden Draft",
		City:   "Soweto",
		Status: model.BusinessStatusDraft,
	}
	require.NoError(t, f.db.Create(business).Error)

	// A guest sees a 404, not a 403: the draft's existence is not disclosed.
	guestRouter := f.routerAs(nil)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/businesses/%d", business.ID), nil)
	w := httptest.NewRecorder()
	guestRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The owner sees it.
	ownerRouter := f.routerAs(f.owner)
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/businesses/%d", business.ID), nil)
	w = httptest.NewRecorder()
	ownerRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
