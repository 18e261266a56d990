package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrDeclined reports that the model refused the request or returned nothing
// usable. Callers treat it as a normal outcome and fall back; transport and
// protocol failures are returned as ordinary errors.
var ErrDeclined = errors.New("model declined request")

// Client calls the OpenRouter chat-completions API.
type Client struct {
	config *config.Config
	client *resty.Client
	cache  *ResponseCache
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates an OpenRouter client. cache may be nil to disable
// response caching.
func NewClient(cfg *config.Config, cache *ResponseCache) *Client {
	client := resty.New().
		SetBaseURL(cfg.OpenRouter.BaseURL).
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("X-Title", "Meal Planner")

	return &Client{
		config: cfg,
		client: client,
		cache:  cache,
	}
}

// Complete sends a system instruction and user content, returning the raw
// model output. Returns ErrDeclined when the model refuses or produces no
// content.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.cache != nil {
		if content, ok := c.cache.Get(ctx, c.config.OpenRouter.Model, system, user); ok {
			common.LogDebug("AI response cache hit")
			return content, nil
		}
	}

	req := chatRequest{
		Model: c.config.OpenRouter.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: c.config.OpenRouter.MaxTokens,
	}

	var result chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("OpenRouter returned error status",
			zap.Int("status", resp.StatusCode()),
			zap.String("model", c.config.OpenRouter.Model),
		)
		return "", fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	if len(result.Choices) == 0 {
		return "", ErrDeclined
	}

	msg := result.Choices[0].Message
	if msg.Refusal != "" || msg.Content == "" {
		return "", ErrDeclined
	}

	if c.cache != nil {
		c.cache.Set(ctx, c.config.OpenRouter.Model, system, user, msg.Content)
	}

	return msg.Content, nil
}

// Structured sends a request expecting a JSON object reply and decodes it
// into out. A refusal, a reply without a JSON object, or a reply that fails
// to decode all yield ErrDeclined.
func (c *Client) Structured(ctx context.Context, system, user string, out interface{}) error {
	content, err := c.Complete(ctx, system, user)
	if err != nil {
		return err
	}

	obj := common.ExtractJSONObject(content)
	if obj == "" {
		return ErrDeclined
	}

	if err := common.ParseJSON(obj, out); err != nil {
		common.LogWarn("failed to decode model JSON output",
			zap.Error(err),
			zap.Int("content_length", len(content)),
		)
		return ErrDeclined
	}

	return nil
}

// Close releases the underlying HTTP connections.
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}
