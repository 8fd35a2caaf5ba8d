package main

import (
	"context"
	"fmt"
	"time"

	"donationhub/internal/config"
	"donationhub/internal/repositories/firestore"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/repositories/memory"
	"donationhub/internal/repositories/mongodb"
	"donationhub/internal/services"
	"donationhub/pkg/cache"
	"donationhub/pkg/database"
	"donationhub/pkg/logger"
	"donationhub/pkg/maps"
	"donationhub/pkg/ml"
	"donationhub/pkg/payment"
	"donationhub/pkg/storage"
)

type repositories struct {
	postings      interfaces.PostingRepository
	users         interfaces.UserRepository
	notifications interfaces.NotificationRepository
	messages      interfaces.MessageRepository
}

// store is an opened backend. repositories is deferred until the cache is known
// because the Mongo user repository reads through it.
type store struct {
	repositories func(cacheService services.CacheService) repositories
	ping         func(ctx context.Context) error
	close        func()
}

func openStore(ctx context.Context, cfg *config.DatabaseConfig, appLogger *logger.Logger) (*store, error) {
	switch cfg.Driver {
	case config.StoreMongo:
		db, err := database.NewMongoDB(&database.MongoConfig{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			MaxPoolSize:    cfg.Mongo.MaxPoolSize,
			MinPoolSize:    cfg.Mongo.MinPoolSize,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
			SocketTimeout:  cfg.Mongo.SocketTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		if cfg.Mongo.RunMigrations {
			if err := database.NewMigrator(db.Database, appLogger).Up(ctx); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("mongo migrations: %w", err)
			}
		}
		appLogger.WithField("database", cfg.Mongo.Database).Info("Connected to MongoDB")

		return &store{
			repositories: func(cacheService services.CacheService) repositories {
				var userCache mongodb.CacheService
				if cacheService != nil {
					userCache = cacheService
				}
				return repositories{
					postings:      mongodb.NewPostingRepository(db.Database, cfg.Timeout),
					users:         mongodb.NewUserRepository(db.Database, userCache, cfg.Timeout),
					notifications: mongodb.NewNotificationRepository(db.Database, cfg.Timeout),
					messages:      mongodb.NewMessageRepository(db.Database, cfg.Timeout),
				}
			},
			ping: db.Ping,
			close: func() {
				if err := db.Close(); err != nil {
					appLogger.WithError(err).Warn("Failed to close MongoDB")
				}
			},
		}, nil

	case config.StoreFirestore:
		client, err := database.NewFirestore(ctx, &database.FirestoreConfig{
			ProjectID:       cfg.Firestore.ProjectID,
			CredentialsFile: cfg.Firestore.CredentialsFile,
		})
		if err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
		appLogger.WithField("project", cfg.Firestore.ProjectID).Info("Connected to Firestore")

		return &store{
			repositories: func(services.CacheService) repositories {
				return repositories{
					postings:      firestore.NewPostingRepository(client, cfg.Timeout),
					users:         firestore.NewUserRepository(client, cfg.Timeout),
					notifications: firestore.NewNotificationRepository(client, cfg.Timeout),
					messages:      firestore.NewMessageRepository(client, cfg.Timeout),
				}
			},
			close: func() {
				if err := client.Close(); err != nil {
					appLogger.WithError(err).Warn("Failed to close Firestore")
				}
			},
		}, nil

	default:
		appLogger.Warn("Using in-memory store, data is lost on restart")
		repos := repositories{
			postings:      memory.NewPostingRepository(),
			users:         memory.NewUserRepository(),
			notifications: memory.NewNotificationRepository(),
			messages:      memory.NewMessageRepository(),
		}
		return &store{
			repositories: func(services.CacheService) repositories { return repos },
			close:        func() {},
		}, nil
	}
}

// openCache returns a nil CacheService when Redis is disabled or unreachable.
func openCache(cfg *config.RedisConfig, appLogger *logger.Logger) (services.CacheService, func()) {
	if !cfg.Enabled {
		return nil, func() {}
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		IdleTimeout:  cfg.IdleTimeout,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err != nil {
		appLogger.LogDegraded("redis", err)
		return nil, func() {}
	}

	appLogger.WithField("host", cfg.Host).Info("Connected to Redis")
	return services.NewCacheService(redisCache, appLogger, "donationhub"), func() {
		if err := redisCache.Close(); err != nil {
			appLogger.WithError(err).Warn("Failed to close Redis")
		}
	}
}

func newStorageProvider(cfg *config.StorageConfig) (storage.StorageProvider, error) {
	switch cfg.Provider {
	case "aws":
		return storage.NewAWSS3Storage(cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcp":
		return storage.NewGCPStorage(cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
	case "local", "":
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func newPaymentProvider(cfg *config.PaymentConfig, appLogger *logger.Logger) payment.PaymentProvider {
	switch cfg.Provider {
	case "stripe":
		return payment.NewStripeProvider(cfg.Stripe.SecretKey)
	case "razorpay":
		return payment.NewRazorpayProvider(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	default:
		appLogger.Warn("Using simulated payment provider")
		return payment.NewSimulatedProvider()
	}
}

// newMapsProvider returns nil when no provider is configured; geocoding then
// reports degraded results instead of failing.
func newMapsProvider(cfg *config.MapsConfig) (maps.MapsProvider, error) {
	switch cfg.Provider {
	case "google":
		provider, err := maps.NewGoogleMapsProvider(cfg.GoogleMaps.APIKey)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "mapbox":
		return maps.NewMapboxProvider(cfg.Mapbox.AccessToken), nil
	default:
		return nil, nil
	}
}

func newSafetyClassifier(cfg *config.MLConfig) ml.SafetyClassifier {
	if !cfg.SafetyEnabled || cfg.SafetyEndpoint == "" {
		return nil
	}
	timeout := cfg.SafetyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return ml.NewHTTPSafetyClassifier(cfg.SafetyEndpoint, cfg.SafetyAPIKey, timeout, cfg.SafetyMinConfidence)
}
