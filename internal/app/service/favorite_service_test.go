package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/internal/db"
	"gorm.io/gorm"
)

type favoriteFixture struct {
	svc  FavoriteService
	db   *gorm.DB
	user *model.User
}

func setupFavoriteTest(t *testing.T) *favoriteFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := NewFavoriteService(
		repository.NewFavoriteRepository(testDB),
		repository.NewBusinessRepository(testDB),
	)

	user := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer"}
	require.NoError(t, testDB.Create(user).Error)

	return &favoriteFixture{svc: svc, db: testDB, user: user}
}

func (f *favoriteFixture) activeBusiness(t *testing.T, name string) *model.Business {
	t.Helper()
	owner := &model.User{Email: name + "@example.com", PasswordHash: "hash", Name: name, Role: model.RoleSupplier}
	require.NoError(t, f.db.Create(owner).Error)
	business := &model.Business{
		UserID: owner.ID,
		Name:   name,
		City:   "Cape Town",
		Status: model.BusinessStatusActive,
	}
	require.NoError(t, f.db.Create(business).Error)
	return business
}

func TestFavorite_AddIsIdempotent(t *testing.T) {
	f := setupFavoriteTest(t)
	business := f.activeBusiness(t, "Sunrise Bakery")

	first, err := f.svc.AddFavorite(f.user.ID, business.ID)
	require.NoError(t, err)

	second, err := f.svc.AddFavorite(f.user.ID, business.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&model.Favorite{}).
		Where("user_id = ? AND business_id = ?", f.user.ID, business.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFavorite_OnlyActiveBusinessesCanBeFavorited(t *testing.T) {
	f := setupFavoriteTest(t)
	business := f.activeBusiness(t, "Night Market")
	require.NoError(t, f.db.Model(&model.Business{}).Where("id = ?", business.ID).
		Update("status", model.BusinessStatusSuspended).Error)

	_, err := f.svc.AddFavorite(f.user.ID, business.ID)
	assert.ErrorIs(t, err, ErrBusinessNotActive)

	_, err = f.svc.AddFavorite(f.user.ID, business.ID+100)
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestFavorite_RemoveIsIdempotent(t *testing.T) {
	f := setupFavoriteTest(t)
	business := f.activeBusiness(t, "Corner Cafe")

	_, err := f.svc.AddFavorite(f.user.ID, business.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveFavorite(f.user.ID, business.ID))
	require.NoError(t, f.svc.RemoveFavorite(f.user.ID, business.ID))

	favorited, err := f.svc.IsFavorited(f.user.ID, business.ID)
	require.NoError(t, err)
	assert.False(t, favorited)
}

func TestFavorite_ListHidesInactiveListings(t *testing.T) {
	f := setupFavoriteTest(t)
	kept := f.activeBusiness(t, "Kept Shop")
	hidden := f.activeBusiness(t, "Hidden Shop")

	_, err := f.svc.AddFavorite(f.user.ID, kept.ID)
	require.NoError(t, err)
	_, err = f.svc.AddFavorite(f.user.ID, hidden.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&model.Business{}).Where("id = ?", hidden.ID).
		Update("status", model.BusinessStatusSuspended).Error)

	favorites, total, err := f.svc.ListFavorites(f.user.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, favorites, 1)
	assert.Equal(t, kept.ID, favorites[0].BusinessID)
	assert.Equal(t, "Kept Shop", favorites[0].Business.Name)

	// The row itself survives: reactivating the listing brings it back.
	require.NoError(t, f.db.Model(&model.Business{}).Where("id = ?", hidden.ID).
		Update("status", model.BusinessStatusActive).Error)

	_, total, err = f.svc.ListFavorites(f.user.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
