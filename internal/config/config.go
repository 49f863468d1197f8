package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "JUSTICESEARCH"

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`

	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns       int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	StoreConcurrency int    `envconfig:"STORE_CONCURRENCY" default:"8"`

	MediaHubURL       string `envconfig:"MEDIA_HUB_URL"`
	MediaHubAPIKey    string `envconfig:"MEDIA_HUB_API_KEY"`
	MediaHubProjectID string `envconfig:"MEDIA_HUB_PROJECT_ID"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"justice-media"`
	S3Region    string `envconfig:"S3_REGION" default:"ap-southeast-2"`

	ProviderTimeout     time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"5s"`
	FastProviderTimeout time.Duration `envconfig:"FAST_PROVIDER_TIMEOUT" default:"1500ms"`
	MaxLimit            int           `envconfig:"MAX_LIMIT" default:"100"`
	ProbeInterval       time.Duration `envconfig:"PROBE_INTERVAL" default:"30s"`

	GazetteerFile string `envconfig:"GAZETTEER_FILE"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.ProviderTimeout <= 0 || c.FastProviderTimeout <= 0 {
		return fmt.Errorf("provider timeouts must be positive")
	}
	if c.FastProviderTimeout > c.ProviderTimeout {
		return fmt.Errorf("fast provider timeout %s exceeds provider timeout %s", c.FastProviderTimeout, c.ProviderTimeout)
	}
	if c.ProbeInterval < 0 {
		return fmt.Errorf("probe interval must not be negative")
	}
	if c.MaxLimit < 1 {
		return fmt.Errorf("max limit must be at least 1, got %d", c.MaxLimit)
	}
	return nil
}

// HasMediaHub reports whether the media hub provider can be registered.
func (c *Config) HasMediaHub() bool {
	return c.MediaHubURL != ""
}

// HasS3 reports whether media thumbnails can be presigned.
func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
