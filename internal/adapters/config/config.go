package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"verdant/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Model         ModelConfig
	Storage       StorageConfig
	Postgres      PostgresConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"verdant"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type HTTPConfig struct {
	Port           int           `envconfig:"HTTP_PORT" default:"8080"`
	PredictTimeout time.Duration `envconfig:"HTTP_PREDICT_TIMEOUT" default:"5s"`
	RateLimitRPS   float64       `envconfig:"HTTP_RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int           `envconfig:"HTTP_RATE_LIMIT_BURST" default:"40"`
	CORSOrigins    []string      `envconfig:"HTTP_CORS_ORIGINS" default:"*"`
}

// ModelConfig locates the versioned classifier artifact and its companion
// documents. The manifest lives next to the ONNX file and carries the
// model version and label set validated against the schema at load time.
type ModelConfig struct {
	ONNXPath      string `envconfig:"MODEL_ONNX_PATH" default:"models/plant_disease_model.onnx"`
	ManifestPath  string `envconfig:"MODEL_MANIFEST_PATH" default:"models/plant_disease_model.manifest.json"`
	SchemaPath    string `envconfig:"MODEL_SCHEMA_PATH" default:"models/feature_schema.json"`
	TreatmentPath string `envconfig:"MODEL_TREATMENTS_PATH" default:"models/treatments.json"`
}

// StorageConfig selects the record store backend.
type StorageConfig struct {
	Backend string `envconfig:"RECORD_STORE_BACKEND" default:"postgres"` // postgres | mongo
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"verdant"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"verdant"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type MongoConfig struct {
	URI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"MONGO_DB" default:"verdant"`
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for background workers
type WorkerConfig struct {
	StatsRefreshInterval time.Duration `envconfig:"WORKER_STATS_REFRESH_INTERVAL" default:"1m"`
	ModelReloadInterval  time.Duration `envconfig:"WORKER_MODEL_RELOAD_INTERVAL" default:"30s"`
	StatsWindow          time.Duration `envconfig:"STATS_RECENT_WINDOW" default:"168h"` // 7 days
	StatsCacheTTL        time.Duration `envconfig:"STATS_CACHE_TTL" default:"30s"`
}

// Load reads configuration from environment variables.
// It first tries to load a .env file (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if cfg.Storage.Backend != "postgres" && cfg.Storage.Backend != "mongo" {
		return nil, errors.Newf("unsupported record store backend: %q", cfg.Storage.Backend)
	}

	return &cfg, nil
}
