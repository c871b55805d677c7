package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proagent/activity-api/internal/config"
	"github.com/proagent/activity-api/internal/database"
	"github.com/proagent/activity-api/internal/handler"
	"github.com/proagent/activity-api/internal/middleware"
	"github.com/proagent/activity-api/internal/models"
	"github.com/proagent/activity-api/internal/repository"
	"github.com/proagent/activity-api/internal/router"
	"github.com/proagent/activity-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Agent{},
		&models.Announcement{},
		&models.Collection{},
		&models.ActivityEvent{},
		&models.SessionRecord{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	eventRepo := repository.NewActivityEventRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)

	activityService := service.NewActivityService(eventRepo, validate, cfg.MetadataMaxBytes, logger)
	sessionService := service.NewSessionService(sessionRepo, logger)
	exportService := service.NewExportService(eventRepo, sessionRepo, logger)
	authService := service.NewAuthService(agentRepo, activityService, sessionService, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	listingService := service.NewListingService(announcementRepo, collectionRepo, activityService, logger)
	profileService := service.NewProfileService(agentRepo, activityService, logger)
	archiveService := service.NewArchiveService(announcementRepo, activityService, cfg.ArchiveAfterDays, logger)
	cacheService := service.NewReferenceCacheService(announcementRepo, redisClient, cfg.ReferenceCacheTTL, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	activityHandler := handler.NewActivityHandler(activityService, exportService, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, exportService, logger)
	maintenanceHandler := handler.NewMaintenanceHandler(archiveService, cacheService, logger)
	listingHandler := handler.NewListingHandler(listingService, profileService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        authHandler,
		ActivityHandler:    activityHandler,
		SessionHandler:     sessionHandler,
		MaintenanceHandler: maintenanceHandler,
		ListingHandler:     listingHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		SessionTracking:    middleware.SessionTracking(sessionService),
		PageViewCapture: middleware.PageViewCapture(middleware.PageViewConfig{
			Recorder:         activityService,
			ExcludedPrefixes: cfg.ExcludedPrefixes,
			Logger:           logger,
		}),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
