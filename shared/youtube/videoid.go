package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)
	bareIDPattern  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// ExtractVideoID accepts watch, youtu.be, shorts and embed URLs as well as a
// bare 11-character video ID.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if bareIDPattern.MatchString(raw) {
		return raw, nil
	}

	if m := videoIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}

	return "", ErrInvalidURL
}

// WatchURL builds the canonical watch page URL for a video.
func WatchURL(base, videoID string) string {
	if base == "" {
		base = "https://www.youtube.com/watch"
	}
	return base + "?v=" + url.QueryEscape(videoID)
}
