package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meal-planner/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstagramTestClient(serverURL string) *InstagramClient {
	return NewInstagramClient(&config.InstagramConfig{
		APIKey:  "test-key",
		Host:    "test-host",
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	})
}

func TestInstagramHashtagSearchMapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/hashtag", r.URL.Path)
		assert.Equal(t, "chicken", r.URL.Query().Get("hashtag"))
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{
					"pk": 12345,
					"code": "Cxyz",
					"caption": {"text": "Easy chicken rice bowl"},
					"image_versions2": {"candidates": [{"url": "https://img/1.jpg"}]},
					"user": {"username": "homecook", "pk": 777},
					"taken_at": 1709290800
				},
				{"caption": "post without identifiers"}
			]
		}`))
	}))
	defer server.Close()

	client := newInstagramTestClient(server.URL)
	results, err := client.Search(context.Background(), "#chicken", 10, "")
	require.NoError(t, err)
	require.Len(t, results, 1, "post missing id or shortcode is skipped")

	r := results[0]
	assert.Equal(t, "12345", r.ID)
	assert.Empty(t, r.Title, "Instagram posts carry no separate title")
	assert.Equal(t, "Easy chicken rice bowl", r.Description)
	assert.Equal(t, "https://www.instagram.com/p/Cxyz/", r.URL)
	assert.Equal(t, "https://img/1.jpg", r.ThumbnailURL)
	assert.Equal(t, "homecook", r.CreatorName)
	assert.Equal(t, "777", r.CreatorID)
	assert.Equal(t, int64(1709290800), r.PublishedAt.Unix())
}

func TestInstagramHashtagUsesFirstQueryWord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chicken", r.URL.Query().Get("hashtag"))
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := newInstagramTestClient(server.URL)
	_, err := client.Search(context.Background(), "chicken rice recipe", 10, "")
	require.NoError(t, err)
}

func TestInstagramAccountSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/posts", r.URL.Path)
		assert.Equal(t, "homecook", r.URL.Query().Get("username"))

		w.Write([]byte(`{"items": [{"id": "99", "shortcode": "Cabc", "caption": "dinner"}]}`))
	}))
	defer server.Close()

	client := newInstagramTestClient(server.URL)
	assert.True(t, client.AccountSearchIgnoresQuery())

	results, err := client.Search(context.Background(), "ignored", 10, "homecook")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "99", results[0].ID)
	assert.Equal(t, "dinner", results[0].Description)
}

func TestInstagramUnknownAccountIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newInstagramTestClient(server.URL)
	results, err := client.Search(context.Background(), "", 10, "ghost")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInstagramMissingKey(t *testing.T) {
	client := NewInstagramClient(&config.InstagramConfig{BaseURL: "http://unused", Timeout: time.Second})

	_, err := client.Search(context.Background(), "q", 5, "")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestInstagramRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newInstagramTestClient(server.URL)
	_, err := client.Search(context.Background(), "q", 5, "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindRateLimited, apiErr.Kind)
}
