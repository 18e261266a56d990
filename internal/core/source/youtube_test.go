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

func newYouTubeTestClient(serverURL string) *YouTubeClient {
	return NewYouTubeClient(&config.YouTubeConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	})
}

func TestYouTubeSearchMapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			assert.Equal(t, "chicken recipe", r.URL.Query().Get("q"))
			w.Write([]byte(`{
				"items": [
					{
						"id": {"videoId": "abc123"},
						"snippet": {
							"title": "Best Chicken",
							"description": "chicken, garlic",
							"channelId": "UC1",
							"channelTitle": "Cook",
							"publishedAt": "2024-03-01T10:00:00Z",
							"thumbnails": {"high": {"url": "https://img/high.jpg"}}
						}
					},
					{"id": {}, "snippet": {"title": "broken item"}}
				]
			}`))
		case "/videos":
			w.Write([]byte(`{"items": [{"id": "abc123", "contentDetails": {"duration": "PT12M"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newYouTubeTestClient(server.URL)
	results, err := client.Search(context.Background(), "chicken recipe", 10, "")
	require.NoError(t, err)
	require.Len(t, results, 1, "item without a video ID is skipped")

	r := results[0]
	assert.Equal(t, "abc123", r.ID)
	assert.Equal(t, "Best Chicken", r.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", r.URL)
	assert.Equal(t, "https://img/high.jpg", r.ThumbnailURL)
	assert.Equal(t, "UC1", r.CreatorID)
	assert.Equal(t, "PT12M", r.Duration)
	assert.Equal(t, 2024, r.PublishedAt.Year())
}

func TestYouTubeSearchMissingKey(t *testing.T) {
	client := NewYouTubeClient(&config.YouTubeConfig{BaseURL: "http://unused", Timeout: time.Second})

	_, err := client.Search(context.Background(), "q", 5, "")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestYouTubeSearchErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"rate limited", http.StatusTooManyRequests, KindRateLimited},
		{"quota", http.StatusForbidden, KindQuota},
		{"server error", http.StatusInternalServerError, KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newYouTubeTestClient(server.URL)
			_, err := client.Search(context.Background(), "q", 5, "")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, SourceYouTube, apiErr.Source)
		})
	}
}

func TestYouTubeAccountNotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newYouTubeTestClient(server.URL)
	results, err := client.Search(context.Background(), "q", 5, "UCmissing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestYouTubeDurationFetchFailureTolerated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			w.Write([]byte(`{"items": [{"id": {"videoId": "v1"}, "snippet": {"title": "T", "publishedAt": "bad-date"}}]}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newYouTubeTestClient(server.URL)
	results, err := client.Search(context.Background(), "q", 5, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Duration)
	assert.True(t, results[0].PublishedAt.IsZero(), "unparseable timestamp degrades to zero time")
}
