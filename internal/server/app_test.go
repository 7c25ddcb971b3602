package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophforge/internal/server/config"
	"github.com/dmitrijs2005/gophforge/internal/server/imagestore"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.DatabaseDSN = filepath.Join(dir, "app.db")
	c.ImageOutputDir = filepath.Join(dir, "images")
	c.Environment = "test"
	return c
}

func quietLogs(t *testing.T) {
	t.Helper()
	orig := logOutput
	logOutput = io.Discard
	t.Cleanup(func() { logOutput = orig })
}

func TestNewApp_ServesAPI(t *testing.T) {
	quietLogs(t)
	ctx := context.Background()

	app, err := NewApp(ctx, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(app.close)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var info struct {
		Environment string `json:"environment"`
		Database    struct {
			Type string `json:"type"`
		} `json:"database"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "test", info.Environment)
	assert.Equal(t, "SQLite", info.Database.Type)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(`{"name":"Widget"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApp_CreatesImageDir(t *testing.T) {
	quietLogs(t)
	c := testConfig(t)

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(app.close)

	fi, err := os.Stat(c.ImageOutputDir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestNewApp_ImageDirError(t *testing.T) {
	quietLogs(t)
	c := testConfig(t)
	require.NoError(t, os.WriteFile(c.ImageOutputDir, []byte("x"), 0o644))

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image dir init error")
}

func TestNewApp_DatabaseError(t *testing.T) {
	quietLogs(t)
	c := testConfig(t)
	c.DatabaseDSN = "mysql://user:pw@localhost/db"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
	assert.NotContains(t, err.Error(), "pw")
}

func TestNewApp_TelemetryError(t *testing.T) {
	quietLogs(t)
	orig := setupTelemetry
	t.Cleanup(func() { setupTelemetry = orig })
	setupTelemetry = func(context.Context, string, string, string) (func(context.Context) error, error) {
		return nil, errors.New("collector down")
	}

	_, err := NewApp(context.Background(), testConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telemetry init error")
}

func TestNewApp_S3Store(t *testing.T) {
	quietLogs(t)
	orig := newS3Store
	t.Cleanup(func() { newS3Store = orig })

	var got imagestore.S3Config
	newS3Store = func(_ context.Context, cfg imagestore.S3Config) (imagestore.Store, error) {
		got = cfg
		return imagestore.NewLocalStore(t.TempDir(), ""), nil
	}

	c := testConfig(t)
	c.ImageStorage = "s3"
	c.S3Bucket = "forge"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(app.close)

	assert.Equal(t, "forge", got.Bucket)
	assert.Equal(t, s3KeyPrefix, got.Prefix)

	// no local directory is exposed when images live in a bucket
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/x.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewApp_S3StoreError(t *testing.T) {
	quietLogs(t)
	orig := newS3Store
	t.Cleanup(func() { newS3Store = orig })
	newS3Store = func(context.Context, imagestore.S3Config) (imagestore.Store, error) {
		return nil, errors.New("no creds")
	}

	c := testConfig(t)
	c.ImageStorage = "s3"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image store init error")
}

func runAsync(app *App, ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()
	return done
}

func TestApp_Run_StopsOnCancel(t *testing.T) {
	quietLogs(t)

	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(app, ctx)

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Error(t, app.db.Ping(), "database should be closed")
}

func TestApp_Run_StopsWhenHTTPListenFails(t *testing.T) {
	quietLogs(t)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	c := testConfig(t)
	c.EndpointAddrHTTP = busy.Addr().String()

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	done := runAsync(app, context.Background())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after listen failure")
	}
}
