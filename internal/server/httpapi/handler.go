// Package httpapi exposes items and image generation over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophforge/internal/logging"
	"github.com/dmitrijs2005/gophforge/internal/server/models"
	"github.com/dmitrijs2005/gophforge/internal/server/services"
)

// ItemStore is the part of services.ItemService the API needs.
type ItemStore interface {
	Create(ctx context.Context, name string, description *string) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// ImageGenerator is the part of services.ImageService the API needs.
type ImageGenerator interface {
	Generate(ctx context.Context, req services.ImageRequest) (*models.GeneratedImage, error)
	GenerateAndStore(ctx context.Context, req services.ImageRequest) (*models.StoredImage, error)
}

const (
	ImageModeInline  = "inline"
	ImageModePersist = "persist"
)

// Options configures the routes that depend on deployment settings.
type Options struct {
	Environment  string
	DatabaseType string
	DatabaseURL  string // already masked
	ImageMode    string
	// ImageDir is served under /images/ when set.
	ImageDir string
}

type Handler struct {
	items  ItemStore
	images ImageGenerator
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

func NewHandler(items ItemStore, images ImageGenerator, opts Options, l logging.Logger) *Handler {
	if opts.ImageMode == "" {
		opts.ImageMode = ImageModeInline
	}
	return &Handler{
		items:  items,
		images: images,
		opts:   opts,
		logger: l.With("module", "http_api"),
		now:    time.Now,
	}
}

// Routes returns the API mux wrapped in recovery and access logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.handleInfo)
	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("POST /api/items", h.handleCreateItem)
	mux.HandleFunc("GET /api/items", h.handleListItems)
	mux.HandleFunc("GET /api/items/{id}", h.handleGetItem)
	mux.HandleFunc("DELETE /api/items/{id}", h.handleDeleteItem)

	mux.HandleFunc("POST /generate-image", h.handleGenerateImage)

	if h.opts.ImageDir != "" {
		mux.Handle("GET /images/", http.StripPrefix("/images/", noListing(http.FileServer(http.Dir(h.opts.ImageDir)))))
	}

	return recoverMiddleware(h.logger)(loggingMiddleware(h.logger)(mux))
}

// noListing hides directory indexes of the image dir.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}
		next.ServeHTTP(w, r)
	})
}
