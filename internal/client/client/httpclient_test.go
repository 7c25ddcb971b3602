package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", 5*time.Second)
}

func TestHTTPClient_CreateItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/items", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Widget", body["name"])
		assert.Nil(t, body["description"])

		_, _ = io.WriteString(w, `{"id":"abc","name":"Widget","description":null,"created_at":"2024-05-01T12:00:00+02:00"}`)
	})

	it, err := c.CreateItem(context.Background(), "Widget", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", it.ID)
	assert.Nil(t, it.Description)
	assert.Equal(t, 2024, it.CreatedAt.Year())
}

func TestHTTPClient_ListGetDelete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/items":
			_, _ = io.WriteString(w, `[{"id":"1","name":"a","description":"x","created_at":"2024-05-01T12:00:00Z"}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/items/1":
			_, _ = io.WriteString(w, `{"id":"1","name":"a","description":"x","created_at":"2024-05-01T12:00:00Z"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/items/1":
			_, _ = io.WriteString(w, `{"message":"Item 1 deleted successfully"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Item not found"}`)
		}
	})
	ctx := context.Background()

	list, err := c.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Description)
	assert.Equal(t, "x", *list[0].Description)

	it, err := c.GetItem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "a", it.Name)

	msg, err := c.DeleteItem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Item 1 deleted successfully", msg)

	_, err = c.GetItem(ctx, "2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Item not found", apiErr.Detail)
	assert.Equal(t, "server returned 404: Item not found", err.Error())
}

func TestHTTPClient_GenerateImage_Inline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a cat", body["prompt"])
		assert.NotContains(t, body, "aspect_ratio")

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{1, 2, 3})
	})

	res, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "a cat"})
	require.NoError(t, err)
	assert.False(t, res.Stored())
	assert.Equal(t, "image/png", res.MimeType)
	assert.Equal(t, []byte{1, 2, 3}, res.Data)
}

func TestHTTPClient_GenerateImage_Persisted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, `{"status":"success","server_name":"My Server!!","image_url":"/images/My_Server.png"}`)
	})

	res, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "Server name: My Server!!"})
	require.NoError(t, err)
	assert.True(t, res.Stored())
	assert.Equal(t, "My Server!!", res.ServerName)
	assert.Equal(t, "/images/My_Server.png", res.ImageURL)
	assert.Empty(t, res.Data)
}

func TestHTTPClient_FetchImage_RelativeURL(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})

	data, ct, err := c.FetchImage(context.Background(), "/images/My_Server.png")
	require.NoError(t, err)
	assert.Equal(t, "/images/My_Server.png", gotPath)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}

func TestHTTPClient_FetchImage_AbsoluteURL(t *testing.T) {
	bucket := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sig", r.URL.Query().Get("X-Amz-Signature"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("obj"))
	}))
	t.Cleanup(bucket.Close)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("API server should not be called, got %s", r.URL.Path)
	})

	data, _, err := c.FetchImage(context.Background(), bucket.URL+"/gophforge/images/a.png?X-Amz-Signature=sig")
	require.NoError(t, err)
	assert.Equal(t, "obj", string(data))
}

func TestHTTPClient_FetchImage_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, _, err := c.FetchImage(context.Background(), "/images/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch image")
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPClient_GenerateImage_Error(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail":"no image generated"}`)
	})

	_, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "no image generated", apiErr.Detail)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestHTTPClient_NonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := c.Ping(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad gateway", apiErr.Detail)
}

func TestHTTPClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second)
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAPIError_NoDetail(t *testing.T) {
	err := &APIError{StatusCode: http.StatusServiceUnavailable}
	assert.Equal(t, "server returned 503 Service Unavailable", err.Error())
}
