package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the image service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"image-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"IMAGE_API_PORT" envDefault:"4000"`
	LogLevel        string        `env:"IMAGE_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"IMAGE_LOG_FORMAT" envDefault:"console"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage Backend Selection
	StorageBackend string `env:"IMAGE_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// Local Storage Configuration
	LocalStoragePath    string `env:"IMAGE_LOCAL_STORAGE_PATH"`
	LocalStorageBaseURL string `env:"IMAGE_LOCAL_STORAGE_BASE_URL"`

	// S3 Storage Configuration
	S3Endpoint     string        `env:"IMAGE_S3_ENDPOINT"`
	S3Region       string        `env:"IMAGE_S3_REGION" envDefault:"ap-south-1"`
	S3Bucket       string        `env:"IMAGE_S3_BUCKET" envDefault:"memi-app"`
	S3AccessKeyID  string        `env:"AWS_ACCESS_KEY"`
	S3SecretKey    string        `env:"AWS_SECRET_KEY"`
	S3UsePathStyle bool          `env:"IMAGE_S3_USE_PATH_STYLE" envDefault:"false"`
	PresignTTL     time.Duration `env:"IMAGE_PRESIGN_TTL" envDefault:"900s"`

	// Upload limits. The transcode profile itself (max edge, JPEG quality) is
	// fixed and lives with the transcoder.
	MaxUploadBytes int64 `env:"IMAGE_MAX_UPLOAD_BYTES" envDefault:"2097152"`

	// Authentication
	AccessTokenSecret string        `env:"ACCESS_TOKEN_SECRET,notEmpty"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`

	// Orphan reconciliation sweep
	ReconcilerEnabled  bool          `env:"IMAGE_RECONCILER_ENABLED" envDefault:"true"`
	ReconcilerInterval int           `env:"IMAGE_RECONCILER_INTERVAL_MINUTES" envDefault:"15"`
	ReconcilerGrace    time.Duration `env:"IMAGE_RECONCILER_GRACE" envDefault:"1h"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 2 * 1024 * 1024
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
	if cfg.IsLocalStorage() && strings.TrimSpace(cfg.LocalStoragePath) == "" {
		return nil, fmt.Errorf("IMAGE_LOCAL_STORAGE_PATH is required when IMAGE_STORAGE_BACKEND is local")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}

// IsS3Storage returns true if S3 storage backend is configured.
func (c *Config) IsS3Storage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "s3"
}
