package creator

import (
	"fmt"
	"net/url"
	"strings"

	"meal-planner/internal/core/source"
)

// ParsedCreator is the identity extracted from a creator profile URL.
// For YouTube, ID is the channel ID when the URL carries one; otherwise
// it is the handle and needs resolution against the API. For Instagram,
// ID is the username.
type ParsedCreator struct {
	Source source.Source
	ID     string
	Name   string
}

// ParseCreatorURL extracts a creator identity from a YouTube or Instagram
// profile URL.
func ParseCreatorURL(rawURL string) (ParsedCreator, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ParsedCreator{}, fmt.Errorf("invalid URL: %w", err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "youtube.com" || host == "m.youtube.com" || host == "youtu.be":
		return parseYouTubeURL(u)
	case host == "instagram.com":
		return parseInstagramURL(u)
	default:
		return ParsedCreator{}, fmt.Errorf("unsupported creator URL host: %s", u.Hostname())
	}
}

func parseYouTubeURL(u *url.URL) (ParsedCreator, error) {
	parts := splitPath(u.Path)
	if len(parts) == 0 {
		return ParsedCreator{}, fmt.Errorf("YouTube URL has no channel path: %s", u)
	}

	switch {
	case strings.HasPrefix(parts[0], "@"):
		handle := strings.TrimPrefix(parts[0], "@")
		return ParsedCreator{Source: source.SourceYouTube, ID: parts[0], Name: handle}, nil
	case parts[0] == "channel" && len(parts) > 1:
		return ParsedCreator{Source: source.SourceYouTube, ID: parts[1], Name: parts[1]}, nil
	case (parts[0] == "c" || parts[0] == "user") && len(parts) > 1:
		return ParsedCreator{Source: source.SourceYouTube, ID: parts[1], Name: parts[1]}, nil
	default:
		return ParsedCreator{}, fmt.Errorf("unrecognized YouTube channel URL: %s", u)
	}
}

func parseInstagramURL(u *url.URL) (ParsedCreator, error) {
	parts := splitPath(u.Path)
	if len(parts) == 0 {
		return ParsedCreator{}, fmt.Errorf("Instagram URL has no username: %s", u)
	}

	// Content paths are not profiles.
	switch parts[0] {
	case "p", "reel", "reels", "tv", "stories", "explore":
		return ParsedCreator{}, fmt.Errorf("Instagram URL is not a profile: %s", u)
	}

	username := strings.TrimPrefix(parts[0], "@")
	return ParsedCreator{Source: source.SourceInstagram, ID: username, Name: username}, nil
}

func splitPath(p string) []string {
	var parts []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}
