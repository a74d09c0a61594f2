package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/internal/db"
	"gorm.io/gorm"
)

func setupBusinessServiceTest(t *testing.T) (BusinessService, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	businessRepo := repository.NewBusinessRepository(testDB)
	svc := NewBusinessService(
		businessRepo,
		repository.NewRatingRepository(testDB),
		repository.NewFavoriteRepository(testDB),
		repository.NewMediaRepository(testDB),
		newFakeStorage(),
	)

	owner := &model.User{
		Email:        "supplier@example.com",
		PasswordHash: "hash",
		Name:         "Supplier",
		Role:         model.RoleSupplier,
	}
	require.NoError(t, testDB.Create(owner).Error)

	return svc, testDB, owner
}

func createDraft(t *testing.T, svc BusinessService, ownerID uint) *model.Business {
	business, err := svc.CreateBusiness(ownerID, CreateBusinessInput{
		Name:     "Thabo's Spaza",
		Category: "grocery",
		City:     "Johannesburg",
		Suburb:   "Orlando East",
	})
	require.NoError(t, err)
	return business
}

func TestBusinessService_CreateStartsAsDraft(t *testing.T) {
	svc, _, owner := setupBusinessServiceTest(t)

	business := createDraft(t, svc, owner.ID)
	assert.Equal(t, model.BusinessStatusDraft, business.Status)
	assert.Equal(t, model.VerificationPending, business.VerificationStatus)
	assert.NotEmpty(t, business.Slug)
	assert.Nil(t, business.PublishedAt)
}

func TestBusinessService_CreateRejectsPartialCoordinates(t *testing.T) {
	svc, _, owner := setupBusinessServiceTest(t)

	_, err := svc.CreateBusiness(owner.ID, CreateBusinessInput{
		Name:     "Broken Coords",
		Category: "grocery",
		City:     "Johannesburg",
		Latitude: ptr(-26.2),
	})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = svc.CreateBusiness(owner.ID, CreateBusinessInput{
		Name:      "Bad Coords",
		Category:  "grocery",
		City:      "Johannesburg",
		Latitude:  ptr(-91.0),
		Longitude: ptr(28.0),
	})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestBusinessService_FullApprovalLifecycle(t *testing.T) {
	svc, _, owner := setupBusinessServiceTest(t)
	business := createDraft(t, svc, owner.ID)

	// draft -> pending
	pending, err := svc.Publish(business.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BusinessStatusPending, pending.Status)

	// pending -> active, PublishedAt stamped
	active, err := svc.Approve(business.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BusinessStatusActive, active.Status)
	require.NotNil(t, active.PublishedAt)
	firstPublished := *active.PublishedAt

	// active -> suspended -> active: PublishedAt unchanged on re-approval path
	suspended, err := svc.Suspend(business.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BusinessStatusSuspended, suspended.Status)

	reactivated, err := svc.Reactivate(business.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BusinessStatusActive, reactivated.Status)
	require.NotNil(t, reactivated.PublishedAt)
	assert.Equal(t, firstPublished.Unix(), reactivated.PublishedAt.Unix())
}

func TestBusinessService_RejectReturnsToDraftWithReason(t *testing.T) {
	svc, _, owner := setupBusinessServiceTest(t)
	business := createDraft(t, svc, owner.ID)

	_, err := svc.Publish(business.ID, owner.ID)
	require.NoError(t, err)

	rejected, err := svc.Reject(business.ID, "address could not be confirmed")
	require.NoError(t, err)
	assert.Equal(t, model.BusinessStatusDraft, rejected.Status)
	assert.Equal(t, "address could not be confirmed", rejected.RejectionReason)
	assert.Nil(t, rejected.PublishedAt)

	// A later approval clears the stale reason.
	_, err = svc.Publish(business.ID, owner.ID)
	require.NoError(t, err)
	approved, err := svc.Approve(business.ID)
	require.NoError(t, err)
	assert.Empty(t, approved.RejectionReason)
}

func TestBusinessService_InvalidTransitionsRejected(t *testing.T) {
	svc, _, owner := setupBusinessServiceTest(t)
	business := createDraft(t, svc, owner.ID)

	// Cannot approve a draft.
	_, err := svc.Approve(business.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Cannot suspend a draft.
	_, err = svc.Suspend(business.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Publishing twice fails the second time.
	_, err = svc.Publish(business.ID, owner.ID)
	require.NoError(t, err)
	_, err = svc.Publish(business.ID, owner.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBusinessService_ArchiveIsTerminal(t *testing.T) {
	svc, _, owner := setupBusinessServiceTest(t)
	business := createDraft(t, svc, owner.ID)

	archived, err := svc.Archive(business.ID, owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.BusinessStatusArchived, archived.Status)
	assert.NotNil(t, archived.ArchivedAt)

	// No way out.
	_, err = svc.Archive(business.ID, owner.ID, false)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Publish(business.ID, owner.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// And no further edits.
	name := "New Name"
	_, err = svc.UpdateBusiness(business.ID, owner.ID, false, UpdateBusinessInput{Name: &name})
	assert.ErrorIs(t, err, ErrBusinessArchived)
}

func TestBusinessService_OnlyOwnerMayPublishOrArchive(t *testing.T) {
	svc, testDB, owner := setupBusinessServiceTest(t)
	business := createDraft(t, svc, owner.ID)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleSupplier}
	require.NoError(t, testDB.Create(other).Error)

	_, err := svc.Publish(business.ID, other.ID)
	assert.ErrorIs(t, err, ErrBusinessAccessDenied)

	_, err = svc.Archive(business.ID, other.ID, false)
	assert.ErrorIs(t, err, ErrBusinessAccessDenied)

	// An admin can archive someone else's listing.
	_, err = svc.Archive(business.ID, other.ID, true)
	assert.NoError(t, err)
}

func TestBusinessService_VisibilityOfNonActiveListings(t *testing.T) {
	svc, testDB, owner := setupBusinessServiceTest(t)
	business := createDraft(t, svc, owner.ID)

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "hash", Name: "Stranger"}
	require.NoError(t, testDB.Create(stranger).Error)

	// Drafts look like 404s to everyone but the owner and admins.
	_, err := svc.GetBusiness(business.ID, nil, false)
	assert.ErrorIs(t, err, ErrBusinessNotFound)
	_, err = svc.GetBusiness(business.ID, &stranger.ID, false)
	assert.ErrorIs(t, err, ErrBusinessNotFound)

	got, err := svc.GetBusiness(business.ID, &owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, business.ID, got.ID)

	got, err = svc.GetBusiness(business.ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, business.ID, got.ID)
}

func TestBusinessService_DetailAggregatesRatingAndFavorites(t *testing.T) {
	svc, testDB, owner := setupBusinessServiceTest(t)
	business := createDraft(t, svc, owner.ID)

	_, err := svc.Publish(business.ID, owner.ID)
	require.NoError(t, err)
	_, err = svc.Approve(business.ID)
	require.NoError(t, err)

	rater := &model.User{Email: "rater@example.com", PasswordHash: "hash", Name: "Rater"}
	require.NoError(t, testDB.Create(rater).Error)

	ratingRepo := repository.NewRatingRepository(testDB)
	require.NoError(t, ratingRepo.Upsert(&model.Rating{BusinessID: business.ID, UserID: rater.ID, Score: 5}))

	favoriteRepo := repository.NewFavoriteRepository(testDB)
	_, err = favoriteRepo.Add(&model.Favorite{UserID: rater.ID, BusinessID: business.ID})
	require.NoError(t, err)

	detail, err := svc.GetBusinessDetail(context.Background(), business.ID, &rater.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Rating.Count)
	assert.InDelta(t, 5.0, detail.Rating.Average, 0.001)
	assert.Equal(t, int64(1), detail.FavoriteCount)
	assert.True(t, detail.IsFavorited)
}

func TestBusinessService_UpdateWithNoFieldsIsNoOp(t *testing.T) {
	svc, _, owner := setupBusinessServiceTest(t)
	business := createDraft(t, svc, owner.ID)

	got, err := svc.UpdateBusiness(business.ID, owner.ID, false, UpdateBusinessInput{})
	require.NoError(t, err)
	assert.Equal(t, business.Name, got.Name)
}
