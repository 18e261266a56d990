package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Source identifies a content platform.
type Source string

const (
	SourceYouTube   Source = "youtube"
	SourceInstagram Source = "instagram"
)

// SearchResult is the normalized shape shared by all platform clients.
// Title is empty for platforms without separate titles (Instagram); the
// caption then lives in Description.
type SearchResult struct {
	ID           string
	Title        string
	Description  string
	URL          string
	ThumbnailURL string
	CreatorID    string
	CreatorName  string
	PublishedAt  time.Time
	Duration     string // ISO 8601, video platforms only
}

// ErrorKind classifies platform API failures.
type ErrorKind string

const (
	KindConfig      ErrorKind = "config"
	KindRateLimited ErrorKind = "rate_limited"
	KindQuota       ErrorKind = "quota"
	KindNotFound    ErrorKind = "not_found"
	KindTransport   ErrorKind = "transport"
)

// APIError is a typed platform API failure. All kinds except KindConfig are
// recoverable at the per-query granularity.
type APIError struct {
	Source     Source
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (%s, status %d): %s", e.Source, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error (%s): %s", e.Source, e.Kind, e.Message)
}

// IsConfigError reports whether err is a missing-credential failure.
func IsConfigError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindConfig
}

// statusError maps an HTTP status code to a typed APIError.
func statusError(src Source, status int, body string) *APIError {
	switch status {
	case http.StatusTooManyRequests:
		return &APIError{Source: src, Kind: KindRateLimited, StatusCode: status, Message: "rate limit exceeded"}
	case http.StatusForbidden:
		return &APIError{Source: src, Kind: KindQuota, StatusCode: status, Message: "API key invalid or quota exceeded"}
	case http.StatusNotFound:
		return &APIError{Source: src, Kind: KindNotFound, StatusCode: status, Message: "not found"}
	default:
		return &APIError{Source: src, Kind: KindTransport, StatusCode: status, Message: body}
	}
}

// transportError wraps a network-level failure.
func transportError(src Source, err error) *APIError {
	return &APIError{Source: src, Kind: KindTransport, Message: err.Error()}
}

// Client is the capability contract the collection pipeline depends on.
// accountFilter scopes the search to one creator account when non-empty.
type Client interface {
	Source() Source
	Search(ctx context.Context, query string, maxResults int, accountFilter string) ([]SearchResult, error)
	Close() error
}

// QueryAgnosticAccountSearch marks clients whose account-scoped search
// returns the account's recent posts regardless of the query. Callers can
// fetch such accounts once instead of once per query.
type QueryAgnosticAccountSearch interface {
	AccountSearchIgnoresQuery() bool
}
