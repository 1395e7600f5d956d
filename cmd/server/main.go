package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"agencypulse/server/config"
	"agencypulse/server/internal/api"
	"agencypulse/server/internal/auth"
	"agencypulse/server/internal/database"
	"agencypulse/server/internal/feed"
	"agencypulse/server/internal/processor"
	"agencypulse/server/internal/queue"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	logger.Infof("Using database at: %s", cfg.DBPath)

	// Initialize database
	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Start the change feed and attach it to the store
	hub := feed.NewHub(cfg.FeedBufferSize, logger)
	hub.Start()
	defer hub.Close()
	db.SetHub(hub)

	// Bulk import pipeline: queue plus gorm-backed batch processor
	gormDB, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open import database connection")
	}

	importQueue := queue.NewImportQueue(cfg.BulkImport.QueueSize, cfg.BulkImport.WorkerCount, logger)
	importProcessor := processor.NewImportProcessor(gormDB, importQueue, hub, cfg, logger)
	importProcessor.Start()
	importQueue.Start()
	defer importQueue.Close()
	defer importProcessor.Stop()

	// Metrics cache: primed once, then refreshed through the feed
	cache := api.NewMetricsCache(db, cfg, logger)
	cache.Refresh()
	cache.BindFeed(hub)
	defer cache.Stop()

	authService := auth.NewService(db, auth.NewSessions(), cfg, logger)
	handler := api.NewHandler(db, authService, importQueue, cache, cfg, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler, authService)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
