package client

import (
	"context"
	"time"
)

// Item is the wire shape of a stored item.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImageRequest is the body of POST /generate-image. Empty fields are left
// to the server defaults.
type ImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	ImageSize   string `json:"image_size,omitempty"`
}

// ImageResult holds whichever shape the server answered with: raw bytes in
// inline mode, or the stored location in persist mode.
type ImageResult struct {
	Data     []byte `json:"-"`
	MimeType string `json:"-"`

	Status     string `json:"status"`
	ServerName string `json:"server_name"`
	ImageURL   string `json:"image_url"`
}

// Stored reports whether the server persisted the image instead of
// returning it.
func (r *ImageResult) Stored() bool { return r.ImageURL != "" }

type Client interface {
	Ping(ctx context.Context) error
	CreateItem(ctx context.Context, name string, description *string) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	DeleteItem(ctx context.Context, id string) (string, error)
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
	// FetchImage downloads a stored image. Relative URLs resolve against
	// the server base URL.
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
}
