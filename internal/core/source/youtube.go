package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const youtubeMaxResults = 50

// YouTubeClient searches the YouTube Data API v3.
type YouTubeClient struct {
	apiKey  string
	client  *resty.Client
	limiter *rate.Limiter
}

type ytSearchResponse struct {
	Items []ytSearchItem `json:"items"`
}

type ytSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet ytSnippet `json:"snippet"`
}

type ytSnippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Thumbnails   map[string]struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

type ytVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// NewYouTubeClient creates a YouTube search client.
func NewYouTubeClient(cfg *config.YouTubeConfig) *YouTubeClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	// YouTube search quota is tight; keep well under it client-side.
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &YouTubeClient{
		apiKey:  cfg.APIKey,
		client:  client,
		limiter: limiter,
	}
}

// Source returns the platform identifier.
func (c *YouTubeClient) Source() Source {
	return SourceYouTube
}

// Search runs a video search. accountFilter, when non-empty, restricts
// results to one channel; a missing channel yields an empty result rather
// than an error.
func (c *YouTubeClient) Search(ctx context.Context, query string, maxResults int, accountFilter string) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, &APIError{Source: SourceYouTube, Kind: KindConfig, Message: "YouTube API key not configured"}
	}

	if maxResults > youtubeMaxResults {
		maxResults = youtubeMaxResults
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError(SourceYouTube, err)
	}

	params := map[string]string{
		"key":        c.apiKey,
		"q":          query,
		"part":       "snippet",
		"type":       "video",
		"maxResults": fmt.Sprintf("%d", maxResults),
		"order":      "relevance",
	}
	if accountFilter != "" {
		params["channelId"] = accountFilter
	}

	var result ytSearchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result).
		Get("/search")

	if err != nil {
		return nil, transportError(SourceYouTube, err)
	}

	if resp.StatusCode() != http.StatusOK {
		apiErr := statusError(SourceYouTube, resp.StatusCode(), resp.String())
		// A missing channel is a normal outcome for account-scoped calls.
		if apiErr.Kind == KindNotFound && accountFilter != "" {
			return nil, nil
		}
		return nil, apiErr
	}

	if len(result.Items) == 0 {
		return nil, nil
	}

	videoIDs := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID != "" {
			videoIDs = append(videoIDs, item.ID.VideoID)
		}
	}
	durations := c.fetchDurations(ctx, videoIDs)

	results := make([]SearchResult, 0, len(result.Items))
	for _, item := range result.Items {
		videoID := item.ID.VideoID
		if videoID == "" {
			// Malformed item; skip rather than failing the batch.
			continue
		}

		publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		results = append(results, SearchResult{
			ID:           videoID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			URL:          fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
			ThumbnailURL: bestThumbnail(item.Snippet.Thumbnails),
			CreatorID:    item.Snippet.ChannelID,
			CreatorName:  item.Snippet.ChannelTitle,
			PublishedAt:  publishedAt,
			Duration:     durations[videoID],
		})
	}

	return results, nil
}

// fetchDurations resolves video durations in one batch call. Best-effort:
// any failure yields missing durations, not an error.
func (c *YouTubeClient) fetchDurations(ctx context.Context, videoIDs []string) map[string]string {
	if len(videoIDs) == 0 {
		return nil
	}

	var result ytVideosResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":  c.apiKey,
			"id":   strings.Join(videoIDs, ","),
			"part": "contentDetails",
		}).
		SetResult(&result).
		Get("/videos")

	if err != nil || resp.StatusCode() != http.StatusOK {
		common.LogDebug("duration fetch failed",
			zap.Int("videos", len(videoIDs)),
			zap.Error(err),
		)
		return nil
	}

	durations := make(map[string]string, len(result.Items))
	for _, item := range result.Items {
		if item.ContentDetails.Duration != "" {
			durations[item.ID] = item.ContentDetails.Duration
		}
	}
	return durations
}

func bestThumbnail(thumbnails map[string]struct {
	URL string `json:"url"`
}) string {
	for _, quality := range []string{"high", "medium", "default"} {
		if t, ok := thumbnails[quality]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

// Close releases HTTP connections.
func (c *YouTubeClient) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
