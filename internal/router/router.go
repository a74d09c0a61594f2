package router

import (
	"github.com/gin-gonic/gin"
	"github.com/vukanihub/vukani-backend/config"
	"github.com/vukanihub/vukani-backend/internal/app/controller"
	"github.com/vukanihub/vukani-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	businessController     *controller.BusinessController
	searchController       *controller.SearchController
	ratingController       *controller.RatingController
	favoriteController     *controller.FavoriteController
	mediaController        *controller.MediaController
	verificationController *controller.VerificationController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	businessController *controller.BusinessController,
	searchController *controller.SearchController,
	ratingController *controller.RatingController,
	favoriteController *controller.FavoriteController,
	mediaController *controller.MediaController,
	verificationController *controller.VerificationController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		businessController:     businessController,
		searchController:       searchController,
		ratingController:       ratingController,
		favoriteController:     favoriteController,
		mediaController:        mediaController,
		verificationController: verificationController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Vukani API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PATCH("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		businesses := v1.Group("/businesses")
		{
			// Discovery is public; a token personalizes favorites and widens
			// status visibility.
			businesses.GET("", r.authMiddleware.OptionalAuthenticate(), r.searchController.Search)
			businesses.GET("/nearby", r.authMiddleware.OptionalAuthenticate(), r.searchController.Nearby)
			businesses.GET("/mine", r.authMiddleware.Authenticate(), r.businessController.Mine)
			businesses.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.businessController.Get)

			businesses.POST("", r.authMiddleware.Authenticate(), r.businessController.Create)
			businesses.PATCH("/:id", r.authMiddleware.Authenticate(), r.businessController.Update)
			businesses.POST("/:id/publish", r.authMiddleware.Authenticate(), r.businessController.Publish)
			businesses.POST("/:id/archive", r.authMiddleware.Authenticate(), r.businessController.Archive)

			businesses.GET("/:id/ratings", r.ratingController.List)
			businesses.GET("/:id/rating-summary", r.ratingController.Summary)
			businesses.GET("/:id/rating", r.authMiddleware.Authenticate(), r.ratingController.Mine)
			businesses.PUT("/:id/rating", r.authMiddleware.Authenticate(), r.ratingController.Submit)
			businesses.DELETE("/:id/rating", r.authMiddleware.Authenticate(), r.ratingController.Delete)

			businesses.PUT("/:id/favorite", r.authMiddleware.Authenticate(), r.favoriteController.Add)
			businesses.DELETE("/:id/favorite", r.authMiddleware.Authenticate(), r.favoriteController.Remove)

			businesses.GET("/:id/media", r.mediaController.List)
			businesses.POST("/:id/media/upload-url", r.authMiddleware.Authenticate(), r.mediaController.RequestUpload)
			businesses.POST("/:id/media", r.authMiddleware.Authenticate(), r.mediaController.ConfirmUpload)

			businesses.POST("/:id/verification", r.authMiddleware.Authenticate(), r.verificationController.Submit)
			businesses.GET("/:id/verification", r.authMiddleware.Authenticate(), r.verificationController.Latest)
		}

		v1.GET("/favorites", r.authMiddleware.Authenticate(), r.favoriteController.List)

		media := v1.Group("/media")
		{
			media.GET("/:mediaId/url", r.mediaController.Download)
			media.DELETE("/:mediaId", r.authMiddleware.Authenticate(), r.mediaController.Delete)
		}

		verification := v1.Group("/verification")
		verification.Use(r.authMiddleware.Authenticate())
		{
			verification.POST("/:requestId/documents/upload-url", r.verificationController.RequestDocumentUpload)
			verification.POST("/:requestId/documents", r.verificationController.AddDocument)
			verification.DELETE("/documents/:documentId", r.verificationController.DeleteDocument)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
		{
			admin.GET("/businesses/stats", r.businessController.Stats)
			admin.POST("/businesses/:id/approve", r.businessController.Approve)
			admin.POST("/businesses/:id/reject", r.businessController.Reject)
			admin.POST("/businesses/:id/suspend", r.businessController.Suspend)
			admin.POST("/businesses/:id/reactivate", r.businessController.Reactivate)

			admin.GET("/verification", r.verificationController.ListPending)
			admin.POST("/verification/:requestId/review", r.verificationController.Review)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
