// Package imagestore persists generated images under derived filenames and
// hands back a URL the image can be fetched from.
package imagestore

import "context"

// Store writes an image. A second Put with the same name replaces the first.
type Store interface {
	Put(ctx context.Context, name string, data []byte, mimeType string) (url string, err error)
}
