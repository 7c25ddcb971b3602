package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "sqlite://./gophforge.db", c.DatabaseDSN)
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, "inline", c.ImageMode)
	assert.Equal(t, "local", c.ImageStorage)
	assert.Equal(t, "generated_images", c.ImageOutputDir)
	assert.Equal(t, 2*time.Minute, c.GeneratorTimeout)
	assert.Equal(t, 15*time.Minute, c.S3PresignTTL)
	assert.Empty(t, c.GeminiAPIKey)
	assert.Empty(t, c.OTelEndpoint)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad mode", mutate: func(c *Config) { c.ImageMode = "stream" }},
		{name: "bad storage", mutate: func(c *Config) { c.ImageStorage = "gcs" }},
		{name: "empty dsn", mutate: func(c *Config) { c.DatabaseDSN = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"database_dsn":       "sqlite:///./from-json.db",
		"environment":        "staging",
		"image_mode":         "persist",
		"endpoint_addr_http": ":7000",
	})
	t.Setenv("DATABASE_URL", "postgresql://u:p@db:5432/app")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := Load([]string{"-c", path, "-a", ":9000"})
	require.NoError(t, err)

	// env beats json
	assert.Equal(t, "postgresql://u:p@db:5432/app", cfg.DatabaseDSN)
	// empty env does not clear json
	assert.Equal(t, "staging", cfg.Environment)
	// flags beat json
	assert.Equal(t, ":9000", cfg.EndpointAddrHTTP)
	assert.Equal(t, "persist", cfg.ImageMode)
	// untouched default
	assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
}

func TestLoad_InvalidResult(t *testing.T) {
	_, err := Load([]string{"-m", "bogus"})
	require.Error(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load([]string{"-config", "/definitely/not/here.json"})
	require.Error(t, err)
}
