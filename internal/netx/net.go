// Package netx holds small HTTP helpers shared by the client.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxDownload caps the size of a fetched object.
const maxDownload = 64 << 20

// Download fetches rawURL with a GET and returns the body and its
// Content-Type. Any status other than 200 is an error.
func Download(ctx context.Context, client *http.Client, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxDownload {
		return nil, "", fmt.Errorf("download too large: more than %d bytes", maxDownload)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
