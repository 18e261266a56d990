package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meal-planner/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// InstagramClient searches Instagram posts through a RapidAPI scraper
// service. The upstream payload shape varies between providers, so mapping
// is deliberately loose: field aliases are probed and malformed posts are
// skipped.
type InstagramClient struct {
	apiKey  string
	client  *resty.Client
	limiter *rate.Limiter
}

type igPostsResponse struct {
	Items []json.RawMessage `json:"items"`
}

// igPost accepts the field aliases seen across RapidAPI Instagram services.
type igPost struct {
	ID             json.RawMessage `json:"id"`
	PK             json.RawMessage `json:"pk"`
	Shortcode      string          `json:"shortcode"`
	Code           string          `json:"code"`
	Caption        json.RawMessage `json:"caption"`
	ThumbnailURL   string          `json:"thumbnail_url"`
	DisplayURL     string          `json:"display_url"`
	ImageVersions2 *struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`
	User      *igUser         `json:"user"`
	Owner     *igUser         `json:"owner"`
	TakenAt   json.RawMessage `json:"taken_at"`
	Timestamp json.RawMessage `json:"timestamp"`
}

type igUser struct {
	Username string          `json:"username"`
	PK       json.RawMessage `json:"pk"`
	ID       json.RawMessage `json:"id"`
}

// NewInstagramClient creates an Instagram search client.
func NewInstagramClient(cfg *config.InstagramConfig) *InstagramClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("X-RapidAPI-Key", cfg.APIKey).
		SetHeader("X-RapidAPI-Host", cfg.Host)

	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &InstagramClient{
		apiKey:  cfg.APIKey,
		client:  client,
		limiter: limiter,
	}
}

// Source returns the platform identifier.
func (c *InstagramClient) Source() Source {
	return SourceInstagram
}

// AccountSearchIgnoresQuery reports that account searches page the
// account's recent posts; the query plays no part.
func (c *InstagramClient) AccountSearchIgnoresQuery() bool {
	return true
}

// Search finds posts by hashtag, or by account when accountFilter is set.
// An unknown account yields an empty result rather than an error.
func (c *InstagramClient) Search(ctx context.Context, query string, maxResults int, accountFilter string) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, &APIError{Source: SourceInstagram, Kind: KindConfig, Message: "Instagram RapidAPI key not configured"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError(SourceInstagram, err)
	}

	if accountFilter != "" {
		return c.searchByAccount(ctx, accountFilter, maxResults)
	}
	return c.searchByHashtag(ctx, query, maxResults)
}

func (c *InstagramClient) searchByHashtag(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	// The hashtag endpoint takes a single tag, so a multi-word query is
	// reduced to its first word.
	hashtag := ""
	if fields := strings.Fields(query); len(fields) > 0 {
		hashtag = strings.TrimPrefix(fields[0], "#")
	}
	if hashtag == "" {
		return nil, nil
	}

	var result igPostsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"hashtag": hashtag,
			"count":   fmt.Sprintf("%d", maxResults),
		}).
		SetResult(&result).
		Get("/v1/hashtag")

	if err != nil {
		return nil, transportError(SourceInstagram, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, statusError(SourceInstagram, resp.StatusCode(), resp.String())
	}

	return c.parsePosts(result.Items), nil
}

func (c *InstagramClient) searchByAccount(ctx context.Context, username string, maxResults int) ([]SearchResult, error) {
	var result igPostsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"username": username,
			"count":    fmt.Sprintf("%d", maxResults),
		}).
		SetResult(&result).
		Get("/v1/posts")

	if err != nil {
		return nil, transportError(SourceInstagram, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		// Unknown account is a normal outcome, not a failure.
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, statusError(SourceInstagram, resp.StatusCode(), resp.String())
	}

	return c.parsePosts(result.Items), nil
}

// parsePosts normalizes raw post payloads, skipping any item missing its
// identifiers.
func (c *InstagramClient) parsePosts(items []json.RawMessage) []SearchResult {
	results := make([]SearchResult, 0, len(items))
	for _, raw := range items {
		var post igPost
		if err := json.Unmarshal(raw, &post); err != nil {
			continue
		}

		postID := rawString(post.ID)
		if postID == "" {
			postID = rawString(post.PK)
		}
		shortcode := post.Shortcode
		if shortcode == "" {
			shortcode = post.Code
		}
		if postID == "" || shortcode == "" {
			continue
		}

		user := post.User
		if user == nil {
			user = post.Owner
		}
		username := ""
		accountID := ""
		if user != nil {
			username = user.Username
			accountID = rawString(user.PK)
			if accountID == "" {
				accountID = rawString(user.ID)
			}
		}

		results = append(results, SearchResult{
			ID:           postID,
			Description:  captionText(post.Caption),
			URL:          fmt.Sprintf("https://www.instagram.com/p/%s/", shortcode),
			ThumbnailURL: thumbnailOf(&post),
			CreatorID:    accountID,
			CreatorName:  username,
			PublishedAt:  postedAt(post.TakenAt, post.Timestamp),
		})
	}
	return results
}

// rawString decodes a JSON value that may be either a string or a number.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// captionText decodes a caption that may be a plain string or an object
// with a text field.
func captionText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Text
	}
	return ""
}

func thumbnailOf(post *igPost) string {
	if post.ThumbnailURL != "" {
		return post.ThumbnailURL
	}
	if post.ImageVersions2 != nil && len(post.ImageVersions2.Candidates) > 0 {
		return post.ImageVersions2.Candidates[0].URL
	}
	return post.DisplayURL
}

// postedAt decodes a timestamp that may be a unix epoch or an RFC 3339
// string, under either field alias.
func postedAt(takenAt, timestamp json.RawMessage) time.Time {
	for _, raw := range []json.RawMessage{takenAt, timestamp} {
		if len(raw) == 0 {
			continue
		}
		var epoch int64
		if err := json.Unmarshal(raw, &epoch); err == nil && epoch > 0 {
			return time.Unix(epoch, 0).UTC()
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// Close releases HTTP connections.
func (c *InstagramClient) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
