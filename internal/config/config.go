package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // SEAM_DATABASE_URL (required)
	HTTPAddr    string // SEAM_HTTP_ADDR (default ":8080")
	NATSURL     string // SEAM_NATS_URL (optional, empty = no events)
	AuthToken   string // SEAM_AUTH_TOKEN (optional, empty = auth disabled)

	// Export settings
	ExportInterval   time.Duration // SEAM_EXPORT_INTERVAL (default 3m; 0 = disabled)
	ExportS3Bucket   string        // SEAM_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string        // SEAM_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string        // SEAM_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string        // SEAM_EXPORT_S3_KEY (default "seam/analyses.jsonl")
	ExportGitRepo    string        // SEAM_EXPORT_GIT_REPO (enables git when set; path to clone)
	ExportGitFile    string        // SEAM_EXPORT_GIT_FILE (default "seam.jsonl")
	ExportGitBranch  string        // SEAM_EXPORT_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("SEAM_DATABASE_URL"),
		HTTPAddr:         envOrDefault("SEAM_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("SEAM_NATS_URL"),
		AuthToken:        os.Getenv("SEAM_AUTH_TOKEN"),
		ExportS3Bucket:   os.Getenv("SEAM_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("SEAM_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("SEAM_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("SEAM_EXPORT_S3_KEY", "seam/analyses.jsonl"),
		ExportGitRepo:    os.Getenv("SEAM_EXPORT_GIT_REPO"),
		ExportGitFile:    envOrDefault("SEAM_EXPORT_GIT_FILE", "seam.jsonl"),
		ExportGitBranch:  envOrDefault("SEAM_EXPORT_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("SEAM_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("SEAM_EXPORT_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("SEAM_EXPORT_INTERVAL: %w", err)
		}
		c.ExportInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
