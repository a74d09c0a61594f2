package db

import (
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/pkg/logger"
)

// Migrate runs GORM auto-migrations for all entities.
func Migrate() error {
	logger.Info("Running database migrations", nil)

	err := DB.AutoMigrate(
		&model.User{},
		&model.Business{},
		&model.MediaAsset{},
		&model.OrphanedObject{},
		&model.Rating{},
		&model.Favorite{},
		&model.VerificationRequest{},
		&model.VerificationDocument{},
	)
	if err != nil {
		logger.Error("Database migration failed", err, nil)
		return err
	}

	logger.Info("Database migrations completed", nil)
	return nil
}
