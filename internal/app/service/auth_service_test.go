package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/internal/db"
	"github.com/vukanihub/vukani-backend/pkg/util"
)

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(
		userRepo,
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
}

func TestAuthService_Register(t *testing.T) {
	authService := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		role     model.UserRole
		wantRole model.UserRole
		wantErr  error
	}{
		{
			name:     "Valid registration",
			email:    "thandi@example.com",
			password: "password123",
			userName: "Thandi",
			role:     model.RoleUser,
			wantRole: model.RoleUser,
		},
		{
			name:     "Supplier registration",
			email:    "owner@example.com",
			password: "password123",
			userName: "Owner",
			role:     model.RoleSupplier,
			wantRole: model.RoleSupplier,
		},
		{
			name:     "Admin role is not self-assignable",
			email:    "wannabe@example.com",
			password: "password123",
			userName: "Wannabe",
			role:     model.RoleAdmin,
			wantRole: model.RoleUser,
		},
		{
			name:     "Duplicate email",
			email:    "thandi@example.com",
			password: "password456",
			userName: "Someone Else",
			role:     model.RoleUser,
			wantErr:  ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.email, tt.password, tt.userName, "011-555-0101", tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			require.NotNil(t, tokens)
			assert.Equal(t, tt.email, user.Email)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEmpty(t, tokens.RefreshToken)
			// The hash never equals the cleartext.
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)

	email := "thandi@example.com"
	password := "password123"
	_, _, err := authService.Register(email, password, "Thandi", "", model.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "Valid login", email: email, password: password},
		{name: "Wrong password", email: email, password: "wrongpassword", wantErr: ErrInvalidCredentials},
		{name: "Non-existing user", email: "notfound@example.com", password: password, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			require.NotNil(t, tokens)

			claims, err := util.ValidateToken(tokens.AccessToken, "test-jwt-secret")
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, user.Email, claims.Email)
		})
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("thandi@example.com", "password123", "Thandi", "", model.RoleUser)
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(user.ID, "Thandiwe", "082-555-0199")
	require.NoError(t, err)
	assert.Equal(t, "Thandiwe", updated.Name)
	assert.Equal(t, "082-555-0199", updated.Phone)

	_, err = authService.UpdateProfile(user.ID+100, "Ghost", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
