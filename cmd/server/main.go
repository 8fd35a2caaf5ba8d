package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donationhub/internal/config"
	handlers "donationhub/internal/handlers/shared"
	"donationhub/internal/middleware"
	"donationhub/internal/services"
	"donationhub/internal/workers"
	"donationhub/pkg/logger"
	"donationhub/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := newLogger(cfg.App)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Server stopped with error")
	}
}

func newLogger(app *config.AppConfig) (*logger.Logger, error) {
	output := "stdout"
	if app.LogFile != "" {
		output = app.LogFile
	}
	return logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(app.LogLevel),
		Format:     app.LogFormat,
		Output:     output,
		TimeFormat: time.RFC3339,
		Caller:     app.Debug,
		AppName:    app.Name,
		Version:    app.Version,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	})
}

func run(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) error {
	checks := map[string]handlers.Pinger{}

	store, err := openStore(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer store.close()
	if store.ping != nil {
		checks["store"] = store.ping
	}

	cacheService, closeCache := openCache(cfg.Redis, appLogger)
	defer closeCache()
	if cacheService != nil {
		checks["redis"] = cacheService.Ping
	}
	repos := store.repositories(cacheService)

	fileStorage, err := newStorageProvider(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	paymentProvider := newPaymentProvider(cfg.Payment, appLogger)
	mapsProvider, err := newMapsProvider(cfg.Maps)
	if err != nil {
		appLogger.WithError(err).Warn("Maps provider unavailable, geocoding will report degraded")
	}

	// Services
	notificationService := services.NewNotificationService(repos.notifications, appLogger)
	feeService := services.NewFeeService(paymentProvider, cfg.Payment.PlatformFee, cfg.Payment.Currency, appLogger)
	evidenceService := services.NewEvidenceService(newSafetyClassifier(cfg.ML), appLogger)
	geocodingService := services.NewGeocodingService(mapsProvider, appLogger)
	userService := services.NewUserService(repos.users, appLogger)
	postingService := services.NewPostingService(repos.postings, feeService, evidenceService, geocodingService, notificationService, appLogger)
	ratingService := services.NewRatingService(repos.postings, repos.users, notificationService, services.DefaultRatingRetry, appLogger)
	feedService := services.NewFeedService(repos.postings, repos.users)
	messageService := services.NewMessageService(repos.messages, repos.postings, notificationService, appLogger)
	locationService := services.NewLocationService(repos.postings, cacheService, cfg.Polling.LocationMinInterval, appLogger)
	uploadService := services.NewUploadService(fileStorage, cfg.Storage.MaxUploadBytes, appLogger)

	h := &routes.Handlers{
		Posting:      handlers.NewPostingHandler(postingService, ratingService, userService),
		Feed:         handlers.NewFeedHandler(feedService),
		User:         handlers.NewUserHandler(userService),
		Message:      handlers.NewMessageHandler(messageService, userService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Location:     handlers.NewLocationHandler(locationService, userService),
		Upload:       handlers.NewUploadHandler(uploadService, userService),
		Geocode:      handlers.NewGeocodeHandler(geocodingService),
		Payment:      handlers.NewPaymentHandler(feeService, userService),
		Health:       handlers.NewHealthHandler(cfg.App.Version, checks),
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.LoggingMiddleware(appLogger))

	if cfg.Storage.Provider == "local" {
		router.Static("/uploads", cfg.Storage.Local.BasePath)
	}

	routes.Setup(router, h,
		middleware.AuthRequired(cfg.Security.JWTSecret, cfg.Security.JWTIssuer, appLogger),
		middleware.RateLimit(cacheService, int64(cfg.Security.RateLimitPerMinute), appLogger),
	)

	reminders := workers.NewReminderWorker(repos.postings, notificationService, cfg.Polling.ReminderThreshold, appLogger)
	scheduler, err := reminders.Start(ctx, cfg.Polling.ReminderSchedule)
	if err != nil {
		return fmt.Errorf("reminder worker: %w", err)
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.WithFields(map[string]interface{}{
			"port":  cfg.App.Port,
			"store": cfg.Database.Driver,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
