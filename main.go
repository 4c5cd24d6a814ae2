// File: /main.go
package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bioloop-api/config"
	"bioloop-api/database"
	"bioloop-api/jobs"
	"bioloop-api/logger"
	"bioloop-api/middleware"
	"bioloop-api/repositories"
	"bioloop-api/routes"
	"bioloop-api/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer appLog.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("failed to connect to database", "error", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		appLog.Fatal("failed to migrate database", "error", err)
	}

	// Set Gin mode based on environment
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire services
	postRepo := repositories.NewPostRepository(db)
	mediaService, err := services.NewMediaService(appLog, cfg.UploadDir, cfg.MaxUploadBytes, cfg.MaxImageWidth, cfg.JPEGQuality)
	if err != nil {
		appLog.Fatal("failed to initialize media service", "error", err)
	}
	postService := services.NewPostService(appLog, postRepo, mediaService)

	// Create router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(middleware.RequestLogger(appLog))
	router.Use(middleware.SecurityHeaders())

	// Setup routes
	routes.SetupRoutes(router, cfg, appLog, postService)

	// Background reconciliation of orphaned assets
	sweepInterval := time.Duration(cfg.SweepIntervalMin) * time.Minute
	sweepJob := jobs.NewAssetSweepJob(appLog, postRepo, mediaService, sweepInterval, sweepInterval)
	sweepJob.Start()
	defer sweepJob.Stop()

	// Start server
	appLog.Info("starting bioloop API server", "port", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		appLog.Fatal("failed to start server", "error", err)
	}
}
