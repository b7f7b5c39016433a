package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/georgecharles/verygoodestates/config"
	"github.com/georgecharles/verygoodestates/internal/api"
	"github.com/georgecharles/verygoodestates/internal/database"
	"github.com/georgecharles/verygoodestates/internal/labels"
	"github.com/georgecharles/verygoodestates/internal/listings"
	"github.com/georgecharles/verygoodestates/internal/locations"
	"github.com/georgecharles/verygoodestates/internal/processor"
	"github.com/georgecharles/verygoodestates/internal/queue"
	"github.com/georgecharles/verygoodestates/internal/scheduler"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		config.NewLogger("info").WithError(err).Fatal("Failed to load configuration")
	}
	logger := config.NewLogger(cfg.LogLevel)

	places, err := config.LoadPlaces()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load place list")
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	lastID, err := db.LastPropertyID()
	if err != nil {
		logger.WithError(err).Fatal("Failed to read stored listings")
	}
	generator := listings.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano())), lastID)

	// Ingestion: scheduler -> queue -> processor -> database
	listingQueue := queue.NewListingQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(db.DB(), listingQueue, cfg, logger)
	batchProcessor.Start()
	listingQueue.Start()

	feed := scheduler.NewScheduler(generator, listingQueue, logger, cfg.Feed.Schedule, cfg.Feed.Size, places.Located())
	if err := feed.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start feed scheduler")
	}

	client := locations.NewClient(logger, cfg.Postcodes.BaseURL, cfg.Postcodes.Timeout)
	resolver := locations.NewResolver(logger, client, places)
	classifier := labels.NewClassifier(labels.ShortLetZone{
		MinLat: cfg.ShortLetZone.MinLat,
		MaxLng: cfg.ShortLetZone.MaxLng,
	})
	handler := api.NewHandler(db, resolver, classifier, generator, cfg.Postcodes.SuggestDebounce, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, handler, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	feed.Stop()
	listingQueue.Close()
	batchProcessor.Stop()

	stored, skipped := batchProcessor.Stats()
	logger.WithField("stored", stored).WithField("skipped", skipped).Info("Shutdown complete")
}
