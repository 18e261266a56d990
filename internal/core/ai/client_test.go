package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meal-planner/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	cfg := &config.Config{
		OpenRouter: config.OpenRouterConfig{
			APIKey:    "test-key",
			BaseURL:   serverURL,
			Model:     "test-model",
			MaxTokens: 256,
			Timeout:   5 * time.Second,
		},
	}
	return NewClient(cfg, nil)
}

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": ` + content + `}}]}`))
	}))
}

func TestCompleteReturnsContent(t *testing.T) {
	server := chatServer(t, `"hello there"`)
	defer server.Close()

	client := newTestClient(server.URL)
	content, err := client.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "hello there", content)
}

func TestCompleteEmptyChoicesIsDecline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestCompleteRefusalIsDecline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "", "refusal": "cannot comply"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestCompleteErrorStatusIsNotDecline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeclined)
}

func TestStructuredDecodesWrappedJSON(t *testing.T) {
	server := chatServer(t, `"Here you go:\n{\"answer\": 42}\nEnjoy!"`)
	defer server.Close()

	client := newTestClient(server.URL)
	var out struct {
		Answer int `json:"answer"`
	}
	require.NoError(t, client.Structured(context.Background(), "sys", "user", &out))
	assert.Equal(t, 42, out.Answer)
}

func TestStructuredNoJSONIsDecline(t *testing.T) {
	server := chatServer(t, `"I cannot produce that."`)
	defer server.Close()

	client := newTestClient(server.URL)
	var out map[string]interface{}
	err := client.Structured(context.Background(), "sys", "user", &out)
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestStructuredMalformedJSONIsDecline(t *testing.T) {
	server := chatServer(t, `"{\"answer\": }"`)
	defer server.Close()

	client := newTestClient(server.URL)
	var out map[string]interface{}
	err := client.Structured(context.Background(), "sys", "user", &out)
	assert.ErrorIs(t, err, ErrDeclined)
}
