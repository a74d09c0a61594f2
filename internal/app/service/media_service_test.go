package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/internal/db"
	"gorm.io/gorm"
)

type mediaFixture struct {
	svc      MediaService
	db       *gorm.DB
	storage  *fakeStorage
	owner    *model.User
	business *model.Business
}

func setupMediaTest(t *testing.T) *mediaFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	storage := newFakeStorage()
	svc := NewMediaService(
		testDB,
		repository.NewMediaRepository(testDB),
		repository.NewBusinessRepository(testDB),
		storage,
	)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "hash", Name: "Owner", Role: model.RoleSupplier}
	require.NoError(t, testDB.Create(owner).Error)

	business := &model.Business{
		UserID: owner.ID,
		Name:   "Mandla's Panel Beaters",
		City:   "Pretoria",
		Status: model.BusinessStatusActive,
	}
	require.NoError(t, testDB.Create(business).Error)

	return &mediaFixture{
		svc:      svc,
		db:       testDB,
		storage:  storage,
		owner:    owner,
		business: business,
	}
}

func (f *mediaFixture) saveAsset(t *testing.T, mediaType model.MediaType, name string) *model.MediaAsset {
	t.Helper()
	asset, err := f.svc.SaveRecord(f.business.ID, f.owner.ID, false, mediaType, SaveMediaInput{
		StoragePath: fmt.Sprintf("businesses/%d/%s/%s.jpg", f.business.ID, mediaType, name),
		FileName:    name + ".jpg",
		ContentType: "image/jpeg",
		SizeBytes:   2048,
	})
	require.NoError(t, err)
	return asset
}

func TestMedia_UploadTicketCarriesScopedKey(t *testing.T) {
	f := setupMediaTest(t)

	ticket, err := f.svc.RequestUpload(context.Background(), f.business.ID, f.owner.ID, false, model.MediaTypeLogo, "image/png")
	require.NoError(t, err)
	assert.Contains(t, ticket.StoragePath, fmt.Sprintf("businesses/%d/logo/", f.business.ID))
	assert.Contains(t, ticket.UploadURL, ticket.StoragePath)

	_, err = f.svc.RequestUpload(context.Background(), f.business.ID, f.owner.ID, false, model.MediaTypeLogo, "image/gif")
	assert.ErrorIs(t, err, ErrInvalidContentType)
}

func TestMedia_SecondLogoRejected(t *testing.T) {
	f := setupMediaTest(t)

	f.saveAsset(t, model.MediaTypeLogo, "logo")

	_, err := f.svc.SaveRecord(f.business.ID, f.owner.ID, false, model.MediaTypeLogo, SaveMediaInput{
		StoragePath: fmt.Sprintf("businesses/%d/logo/second.jpg", f.business.ID),
		FileName:    "second.jpg",
		ContentType: "image/jpeg",
	})
	assert.ErrorIs(t, err, ErrLogoAlreadyExists)
}

func TestMedia_PhotoCapEnforced(t *testing.T) {
	f := setupMediaTest(t)

	for i := 0; i < model.MaxPhotosPerBusiness; i++ {
		asset := f.saveAsset(t, model.MediaTypePhoto, fmt.Sprintf("photo-%d", i))
		assert.Equal(t, i, asset.DisplayOrder)
	}

	_, err := f.svc.SaveRecord(f.business.ID, f.owner.ID, false, model.MediaTypePhoto, SaveMediaInput{
		StoragePath: fmt.Sprintf("businesses/%d/photo/overflow.jpg", f.business.ID),
		FileName:    "overflow.jpg",
		ContentType: "image/jpeg",
	})
	assert.ErrorIs(t, err, ErrPhotoLimitReached)
}

func TestMedia_SaveRejectsForeignKey(t *testing.T) {
	f := setupMediaTest(t)

	// A key issued for some other business cannot be confirmed here.
	_, err := f.svc.SaveRecord(f.business.ID, f.owner.ID, false, model.MediaTypePhoto, SaveMediaInput{
		StoragePath: "businesses/9999/photo/sneaky.jpg",
		FileName:    "sneaky.jpg",
		ContentType: "image/jpeg",
	})
	assert.ErrorIs(t, err, ErrInvalidMediaType)
}

func TestMedia_SaveRejectsOversizedFile(t *testing.T) {
	f := setupMediaTest(t)

	_, err := f.svc.SaveRecord(f.business.ID, f.owner.ID, false, model.MediaTypePhoto, SaveMediaInput{
		StoragePath: fmt.Sprintf("businesses/%d/photo/huge.jpg", f.business.ID),
		FileName:    "huge.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   maxMediaSizeBytes + 1,
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestMedia_OnlyOwnerMayManage(t *testing.T) {
	f := setupMediaTest(t)

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "hash", Name: "Stranger"}
	require.NoError(t, f.db.Create(stranger).Error)

	_, err := f.svc.RequestUpload(context.Background(), f.business.ID, stranger.ID, false, model.MediaTypePhoto, "image/jpeg")
	assert.ErrorIs(t, err, ErrBusinessAccessDenied)

	asset := f.saveAsset(t, model.MediaTypePhoto, "photo")
	err = f.svc.DeleteMedia(context.Background(), asset.ID, stranger.ID, false)
	assert.ErrorIs(t, err, ErrBusinessAccessDenied)

	// Admins may act on any business.
	err = f.svc.DeleteMedia(context.Background(), asset.ID, stranger.ID, true)
	assert.NoError(t, err)
}

func TestMedia_DeleteRemovesRecordAndObject(t *testing.T) {
	f := setupMediaTest(t)

	asset := f.saveAsset(t, model.MediaTypeLogo, "logo")

	require.NoError(t, f.svc.DeleteMedia(context.Background(), asset.ID, f.owner.ID, false))
	assert.Contains(t, f.storage.deletedKeys(), asset.StoragePath)

	_, err := f.svc.ResolveDownloadURL(context.Background(), asset.ID)
	assert.ErrorIs(t, err, ErrMediaNotFound)

	// The slot is free again.
	f.saveAsset(t, model.MediaTypeLogo, "replacement")
}

func TestMedia_StorageFailureRecordsOrphan(t *testing.T) {
	f := setupMediaTest(t)

	asset := f.saveAsset(t, model.MediaTypePhoto, "photo")

	f.storage.failDelete = true
	// The record is gone even though the object delete failed.
	require.NoError(t, f.svc.DeleteMedia(context.Background(), asset.ID, f.owner.ID, false))

	var orphan model.OrphanedObject
	require.NoError(t, f.db.Where("storage_path = ?", asset.StoragePath).First(&orphan).Error)
	assert.NotEmpty(t, orphan.LastError)
}

func TestMedia_SweepReclaimsOrphans(t *testing.T) {
	f := setupMediaTest(t)

	asset := f.saveAsset(t, model.MediaTypePhoto, "photo")
	f.storage.failDelete = true
	require.NoError(t, f.svc.DeleteMedia(context.Background(), asset.ID, f.owner.ID, false))

	// First sweep still cannot reach storage; the orphan stays listed with
	// another attempt recorded.
	reclaimed, err := f.svc.SweepOrphans(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, reclaimed)

	f.storage.failDelete = false
	reclaimed, err = f.svc.SweepOrphans(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, reclaimed)
	assert.Contains(t, f.storage.deletedKeys(), asset.StoragePath)

	// Resolved orphans are not swept again.
	reclaimed, err = f.svc.SweepOrphans(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, reclaimed)
}

func TestMedia_ListDegradesWhenPresignFails(t *testing.T) {
	f := setupMediaTest(t)

	f.saveAsset(t, model.MediaTypeLogo, "logo")
	f.saveAsset(t, model.MediaTypePhoto, "photo")

	f.storage.failPresign = true
	views, err := f.svc.ListMedia(context.Background(), f.business.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, view := range views {
		assert.Empty(t, view.URL)
	}
}

func TestMedia_UploadBlockedForArchivedBusiness(t *testing.T) {
	f := setupMediaTest(t)

	require.NoError(t, f.db.Model(&model.Business{}).Where("id = ?", f.business.ID).
		Update("status", model.BusinessStatusArchived).Error)

	_, err := f.svc.RequestUpload(context.Background(), f.business.ID, f.owner.ID, false, model.MediaTypePhoto, "image/jpeg")
	assert.ErrorIs(t, err, ErrBusinessArchived)
}
