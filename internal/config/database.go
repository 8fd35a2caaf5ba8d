package config

import (
	"time"
)

const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	// Timeout bounds every store call.
	Timeout   time.Duration    `yaml:"timeout"`
	Mongo     *MongoConfig     `yaml:"mongo"`
	Firestore *FirestoreConfig `yaml:"firestore"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	MaxPoolSize    int           `yaml:"max_pool_size"`
	MinPoolSize    int           `yaml:"min_pool_size"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	SocketTimeout  time.Duration `yaml:"socket_timeout"`
	RunMigrations  bool          `yaml:"run_migrations"`
}

type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Driver:  getEnv("STORE_DRIVER", StoreMongo),
		Timeout: getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		Mongo: &MongoConfig{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017/donationhub"),
			Database:       getEnv("MONGODB_DATABASE", "donationhub"),
			MaxPoolSize:    getEnvAsInt("MONGODB_MAX_POOL_SIZE", 100),
			MinPoolSize:    getEnvAsInt("MONGODB_MIN_POOL_SIZE", 5),
			ConnectTimeout: getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			SocketTimeout:  getEnvAsDuration("MONGODB_SOCKET_TIMEOUT", 30*time.Second),
			RunMigrations:  getEnvAsBool("MONGODB_RUN_MIGRATIONS", true),
		},
		Firestore: &FirestoreConfig{
			ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		},
	}
}
