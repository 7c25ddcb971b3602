package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig lists the recognised environment variables. Unset variables are
// left at their zero value and do not override earlier layers.
type envConfig struct {
	EndpointAddrHTTP string        `env:"HTTP_ADDR"`
	EndpointAddrGRPC string        `env:"GRPC_ADDR"`
	DatabaseDSN      string        `env:"DATABASE_URL"`
	Environment      string        `env:"ENVIRONMENT"`
	LogLevel         string        `env:"LOG_LEVEL"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel      string        `env:"GEMINI_MODEL"`
	GeminiBaseURL    string        `env:"GEMINI_BASE_URL"`
	GeneratorTimeout time.Duration `env:"GENERATOR_TIMEOUT"`
	ImageMode        string        `env:"IMAGE_MODE"`
	ImageStorage     string        `env:"IMAGE_STORAGE"`
	ImageOutputDir   string        `env:"IMAGE_OUTPUT_DIR"`
	ImageBaseURL     string        `env:"IMAGE_BASE_URL"`
	S3RootUser       string        `env:"S3_ROOT_USER"`
	S3RootPassword   string        `env:"S3_ROOT_PASSWORD"`
	S3Bucket         string        `env:"S3_BUCKET"`
	S3Region         string        `env:"S3_REGION"`
	S3BaseEndpoint   string        `env:"S3_BASE_ENDPOINT"`
	S3PresignTTL     time.Duration `env:"S3_PRESIGN_TTL"`
	OTelEndpoint     string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func parseEnv(config *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&config.EndpointAddrHTTP, e.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.Environment, e.Environment)
	setString(&config.LogLevel, e.LogLevel)
	setString(&config.GeminiAPIKey, e.GeminiAPIKey)
	setString(&config.GeminiModel, e.GeminiModel)
	setString(&config.GeminiBaseURL, e.GeminiBaseURL)
	if e.GeneratorTimeout > 0 {
		config.GeneratorTimeout = e.GeneratorTimeout
	}
	setString(&config.ImageMode, e.ImageMode)
	setString(&config.ImageStorage, e.ImageStorage)
	setString(&config.ImageOutputDir, e.ImageOutputDir)
	setString(&config.ImageBaseURL, e.ImageBaseURL)
	setString(&config.S3RootUser, e.S3RootUser)
	setString(&config.S3RootPassword, e.S3RootPassword)
	setString(&config.S3Bucket, e.S3Bucket)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	if e.S3PresignTTL > 0 {
		config.S3PresignTTL = e.S3PresignTTL
	}
	setString(&config.OTelEndpoint, e.OTelEndpoint)

	return nil
}
