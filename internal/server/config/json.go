package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophforge/internal/flagx"
	"github.com/dmitrijs2005/gophforge/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "30s"-style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	Environment      string         `json:"environment"`
	LogLevel         string         `json:"log_level"`
	GeminiAPIKey     string         `json:"gemini_api_key"`
	GeminiModel      string         `json:"gemini_model"`
	GeminiBaseURL    string         `json:"gemini_base_url"`
	GeneratorTimeout timex.Duration `json:"generator_timeout"`
	ImageMode        string         `json:"image_mode"`
	ImageStorage     string         `json:"image_storage"`
	ImageOutputDir   string         `json:"image_output_dir"`
	ImageBaseURL     string         `json:"image_base_url"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3PresignTTL     timex.Duration `json:"s3_presign_ttl"`
	OTelEndpoint     string         `json:"otel_endpoint"`
}

// parseJson overlays values from the file named by -c / -config. Keys that
// are missing from the file leave config untouched.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.GeminiAPIKey, c.GeminiAPIKey)
	setString(&config.GeminiModel, c.GeminiModel)
	setString(&config.GeminiBaseURL, c.GeminiBaseURL)
	if c.GeneratorTimeout.Duration > 0 {
		config.GeneratorTimeout = c.GeneratorTimeout.Duration
	}
	setString(&config.ImageMode, c.ImageMode)
	setString(&config.ImageStorage, c.ImageStorage)
	setString(&config.ImageOutputDir, c.ImageOutputDir)
	setString(&config.ImageBaseURL, c.ImageBaseURL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.S3PresignTTL.Duration > 0 {
		config.S3PresignTTL = c.S3PresignTTL.Duration
	}
	setString(&config.OTelEndpoint, c.OTelEndpoint)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
