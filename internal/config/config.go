package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// ServiceRoleKey authenticates admin and pipeline API calls.
	ServiceRoleKey string `envconfig:"SERVICE_ROLE_KEY"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"zalr-judgments"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	VoyageAPIKey string `envconfig:"VOYAGE_API_KEY"`
	HFAPIToken   string `envconfig:"HF_API_TOKEN"`

	SentryDSN         string `envconfig:"SENTRY_DSN"`
	SentryEnvironment string `envconfig:"SENTRY_ENVIRONMENT" default:"development"`

	TaxonomyPath string `envconfig:"TAXONOMY_PATH" default:"config/practice_areas.yaml"`

	// WorkerPollInterval is how often the serve daemon's classify worker
	// checks for judgments awaiting a practice area.
	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"30s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ZALR", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
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

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasVoyage() bool {
	return c.VoyageAPIKey != ""
}

func (c *Config) HasHuggingFace() bool {
	return c.HFAPIToken != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
