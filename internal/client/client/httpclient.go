package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophforge/internal/netx"
)

// HTTPClient implements Client over the REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *HTTPClient) CreateItem(ctx context.Context, name string, description *string) (*Item, error) {
	body := struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}{Name: name, Description: description}

	var it Item
	if err := c.do(ctx, http.MethodPost, "/api/items", body, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (c *HTTPClient) ListItems(ctx context.Context) ([]Item, error) {
	items := []Item{}
	if err := c.do(ctx, http.MethodGet, "/api/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) GetItem(ctx context.Context, id string) (*Item, error) {
	var it Item
	if err := c.do(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// DeleteItem removes the item and returns the server's confirmation message.
func (c *HTTPClient) DeleteItem(ctx context.Context, id string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	resp, err := c.send(ctx, http.MethodPost, "/generate-image", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, raw)
	}

	ct := resp.Header.Get("Content-Type")
	if mt, _, _ := mime.ParseMediaType(ct); mt == "application/json" {
		var r ImageResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return &r, nil
	}

	return &ImageResult{Data: raw, MimeType: ct}, nil
}

func (c *HTTPClient) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	u, err := c.resolve(imageURL)
	if err != nil {
		return nil, "", err
	}
	data, ct, err := netx.Download(ctx, c.httpClient, u)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	return data, ct, nil
}

func (c *HTTPClient) resolve(ref string) (string, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	return base.ResolveReference(r).String(), nil
}

// do sends a JSON request and decodes a JSON answer into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func apiError(status int, raw []byte) error {
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &e) != nil {
		e.Detail = strings.TrimSpace(string(raw))
	}
	return &APIError{StatusCode: status, Detail: e.Detail}
}
