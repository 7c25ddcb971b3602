// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables and command-line
// flags.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the GophForge server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses for the REST API and the gRPC health endpoint.
//   - DatabaseDSN: postgres:// or sqlite:// DSN.
//   - Environment: free-form deployment name reported by GET /.
//   - GeminiAPIKey / GeminiModel / GeminiBaseURL / GeneratorTimeout: image model access.
//   - ImageMode: "inline" returns bytes, "persist" stores the image and returns its URL.
//   - ImageStorage: "local" (ImageOutputDir, ImageBaseURL) or "s3".
//   - S3*: credentials and location of the S3-compatible bucket.
//   - OTelEndpoint: OTLP/HTTP collector; empty disables tracing export.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string
	DatabaseDSN      string
	Environment      string
	LogLevel         string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	GeneratorTimeout time.Duration

	ImageMode      string
	ImageStorage   string
	ImageOutputDir string
	ImageBaseURL   string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3PresignTTL   time.Duration

	OTelEndpoint string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = "sqlite://./gophforge.db"
	c.Environment = "development"
	c.LogLevel = "info"
	c.GeminiModel = "gemini-3-pro-image-preview"
	c.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	c.GeneratorTimeout = 2 * time.Minute
	c.ImageMode = "inline"
	c.ImageStorage = "local"
	c.ImageOutputDir = "generated_images"
	c.ImageBaseURL = ""
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "gophforge"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3PresignTTL = 15 * time.Minute
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.ImageMode {
	case "inline", "persist":
	default:
		return fmt.Errorf("invalid image mode %q (want inline or persist)", c.ImageMode)
	}
	switch c.ImageStorage {
	case "local", "s3":
	default:
		return fmt.Errorf("invalid image storage %q (want local or s3)", c.ImageStorage)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database DSN is empty")
	}
	return nil
}

// LoadConfig builds a Config from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, then the JSON file named by -c/-config, then
// environment variables, then command-line flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
