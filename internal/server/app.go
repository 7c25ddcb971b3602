// Package server wires the GophForge server together: storage, the image
// generator, the HTTP API and the gRPC health endpoint. It also owns
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophforge/internal/filex"
	"github.com/dmitrijs2005/gophforge/internal/logging"
	"github.com/dmitrijs2005/gophforge/internal/server/config"
	"github.com/dmitrijs2005/gophforge/internal/server/httpapi"
	"github.com/dmitrijs2005/gophforge/internal/server/imagegen"
	"github.com/dmitrijs2005/gophforge/internal/server/imagestore"
	"github.com/dmitrijs2005/gophforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophforge/internal/server/services"
	"github.com/dmitrijs2005/gophforge/internal/telemetry"

	gs "github.com/dmitrijs2005/gophforge/internal/server/grpc"
)

const (
	serviceName       = "gophforge"
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	s3KeyPrefix       = "images"
)

// seams for tests
var (
	logOutput        io.Writer = os.Stdout
	setupTelemetry             = telemetry.Setup
	newS3Store                 = func(ctx context.Context, cfg imagestore.S3Config) (imagestore.Store, error) { return imagestore.NewS3Store(ctx, cfg) }
	signalsToObserve           = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
)

type App struct {
	config            *config.Config
	logger            logging.Logger
	db                *sql.DB
	itemService       *services.ItemService
	handler           http.Handler
	grpcServer        *gs.GRPCServer
	shutdownTelemetry func(context.Context) error
}

// NewApp opens the database (running migrations), builds the services and
// prepares both servers. Nothing listens until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(logOutput, logging.ParseLevel(c.LogLevel))

	shutdownTelemetry, err := setupTelemetry(ctx, serviceName, c.OTelEndpoint, c.Environment)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		_ = shutdownTelemetry(ctx)
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		_ = shutdownTelemetry(ctx)
		return nil, err
	}
	app.shutdownTelemetry = shutdownTelemetry

	logger.Info(ctx, "database ready",
		"backend", repomanager.BackendName(c.DatabaseDSN),
		"dsn", repomanager.MaskDSN(c.DatabaseDSN))

	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	items := services.NewItemService(db, rm, logger)

	opts := httpapi.Options{
		Environment:  c.Environment,
		DatabaseType: repomanager.BackendName(c.DatabaseDSN),
		DatabaseURL:  repomanager.MaskDSN(c.DatabaseDSN),
		ImageMode:    c.ImageMode,
	}

	var store imagestore.Store
	switch c.ImageStorage {
	case "s3":
		s, err := newS3Store(ctx, imagestore.S3Config{
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Prefix:       s3KeyPrefix,
			PresignTTL:   c.S3PresignTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("image store init error: %w", err)
		}
		store = s
	default:
		dir, err := filex.EnsureDir(c.ImageOutputDir)
		if err != nil {
			return nil, fmt.Errorf("image dir init error: %w", err)
		}
		local := imagestore.NewLocalStore(dir, c.ImageBaseURL)
		opts.ImageDir = local.Dir()
		store = local
	}

	generator := imagegen.NewGeminiClient(imagegen.GeminiConfig{
		BaseURL: c.GeminiBaseURL,
		APIKey:  c.GeminiAPIKey,
		Model:   c.GeminiModel,
		Timeout: c.GeneratorTimeout,
	})
	if c.GeminiAPIKey == "" {
		logger.Warn(ctx, "GEMINI_API_KEY is not set, image generation will fail")
	}
	images := services.NewImageService(generator, store, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		itemService: items,
		handler:     httpapi.NewHandler(items, images, opts, logger).Routes(),
		grpcServer:  gs.NewGRPCServer(c.EndpointAddrGRPC, logger, items),
	}, nil
}

// Handler exposes the HTTP routes, mostly for tests.
func (app *App) Handler() http.Handler { return app.handler }

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, signalsToObserve...)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "signal received, shutting down", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "grpc server listening", "addr", app.config.EndpointAddrGRPC)
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or
// either server fails, then releases the database and flushes traces.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "app stopped")
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	if app.shutdownTelemetry != nil {
		if err := app.shutdownTelemetry(ctx); err != nil {
			app.logger.Error(ctx, "telemetry shutdown error", "error", err)
		}
	}
}
