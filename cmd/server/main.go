package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vukanihub/vukani-backend/config"
	"github.com/vukanihub/vukani-backend/internal/app/controller"
	"github.com/vukanihub/vukani-backend/internal/app/repository"
	"github.com/vukanihub/vukani-backend/internal/app/service"
	"github.com/vukanihub/vukani-backend/internal/db"
	"github.com/vukanihub/vukani-backend/internal/middleware"
	"github.com/vukanihub/vukani-backend/internal/router"
	"github.com/vukanihub/vukani-backend/internal/scheduler"
	"github.com/vukanihub/vukani-backend/internal/storage"
	"github.com/vukanihub/vukani-backend/pkg/logger"
	"github.com/vukanihub/vukani-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting Vukani Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to connect to Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	objectStorage := storage.NewS3Storage(&cfg.S3)

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	businessRepo := repository.NewBusinessRepository(db.GetDB())
	ratingRepo := repository.NewRatingRepository(db.GetDB())
	favoriteRepo := repository.NewFavoriteRepository(db.GetDB())
	mediaRepo := repository.NewMediaRepository(db.GetDB())
	verificationRepo := repository.NewVerificationRepository(db.GetDB())

	// Services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	businessService := service.NewBusinessService(businessRepo, ratingRepo, favoriteRepo, mediaRepo, objectStorage)
	searchService := service.NewSearchService(
		businessRepo, ratingRepo, favoriteRepo, mediaRepo, objectStorage,
		cfg.Search.DefaultRadiusKm, cfg.Search.MaxRadiusKm,
		cfg.Search.MaxPageSize, cfg.Search.EnrichmentWorkers,
	)
	ratingService := service.NewRatingService(ratingRepo, businessRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, businessRepo)
	mediaService := service.NewMediaService(db.GetDB(), mediaRepo, businessRepo, objectStorage)
	verificationService := service.NewVerificationService(db.GetDB(), verificationRepo, businessRepo, mediaRepo, objectStorage)

	// Controllers
	authController := controller.NewAuthController(authService)
	businessController := controller.NewBusinessController(businessService)
	searchController := controller.NewSearchController(searchService)
	ratingController := controller.NewRatingController(ratingService)
	favoriteController := controller.NewFavoriteController(favoriteService)
	mediaController := controller.NewMediaController(mediaService)
	verificationController := controller.NewVerificationController(verificationService)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authController,
		businessController,
		searchController,
		ratingController,
		favoriteController,
		mediaController,
		verificationController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	sweepScheduler := scheduler.NewOrphanSweepScheduler(mediaService)
	if err := sweepScheduler.Start(); err != nil {
		logger.Fatal("Failed to start orphan sweep scheduler", err)
	}
	defer sweepScheduler.Stop()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
}
