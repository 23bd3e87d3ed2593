package config

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBServer   string `env:"DB_SERVER"`
	DBDatabase string `env:"DB_DATABASE"`
	DBUsername string `env:"DB_USERNAME"`
	DBPassword string `env:"DB_PASSWORD"`

	UploadURL string `env:"UPLOAD_URL"`
	APIKey    string `env:"API_KEY"`

	ImageDownloadPath string        `env:"IMAGE_DOWNLOAD_PATH" envDefault:"./images"`
	WorkerConcurrency int           `env:"WORKER_CONCURRENCY" envDefault:"8"`
	MaxUploadAttempts int           `env:"MAX_UPLOAD_ATTEMPTS" envDefault:"3"`
	UploadTimeout     time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"10s"`

	MediaResourceID string `env:"MEDIA_RESOURCE_ID" envDefault:"68920485-d222-4ff0-b947-e0340d77b56a"`
	BatchLimit      int    `env:"BATCH_LIMIT" envDefault:"100"`

	ReportPath string `env:"REPORT_PATH" envDefault:"output.xlsx"`
	LogFile    string `env:"LOG_FILE" envDefault:"process.log"`

	// When ImageBucket is set, fetched images are archived to S3-compatible
	// object storage instead of the local image directory.
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	ImageBucket       string `env:"IMAGE_BUCKET"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (useful for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, continuing with environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if cfg.UploadURL == "" {
		return nil, fmt.Errorf("UPLOAD_URL must be set")
	}
	if cfg.WorkerConcurrency <= 0 {
		log.Printf("Invalid WORKER_CONCURRENCY value %d, using default 8", cfg.WorkerConcurrency)
		cfg.WorkerConcurrency = 8
	}

	return &cfg, nil
}

// SourceDSN assembles the SQL Server connection string from the DB_* values.
func (c *Config) SourceDSN() string {
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.DBUsername, c.DBPassword),
		Host:     c.DBServer,
		RawQuery: url.Values{"database": []string{c.DBDatabase}}.Encode(),
	}
	return u.String()
}
