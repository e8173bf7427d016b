package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxPageBytes   = 8 << 20
	defaultTimeout = 30 * time.Second
)

// PageLoader returns the HTML of a page.
type PageLoader interface {
	Load(ctx context.Context, pageURL string) (string, error)
}

// HTTPLoader fetches pages with a plain GET.
type HTTPLoader struct {
	client   *http.Client
	language string
}

func NewHTTPLoader(client *http.Client, language string) *HTTPLoader {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPLoader{client: client, language: language}
}

func (l *HTTPLoader) Load(ctx context.Context, pageURL string) (string, error) {
	body, err := l.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (l *HTTPLoader) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if l.language != "" {
		req.Header.Set("Accept-Language", l.language)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("request %s returned %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	return body, nil
}

// pageMetadata is what the watch page advertises in its <head>.
type pageMetadata struct {
	Title       string
	Author      string
	Description string
}

// parsePageMetadata reads Open Graph tags and the channel name link.
func parsePageMetadata(page string) pageMetadata {
	var meta pageMetadata

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return meta
	}

	var docTitle string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				key := attr(n, "property")
				if key == "" {
					key = attr(n, "name")
				}
				switch key {
				case "og:title":
					meta.Title = attr(n, "content")
				case "title":
					if meta.Title == "" {
						meta.Title = attr(n, "content")
					}
				case "og:description":
					meta.Description = attr(n, "content")
				}
			case "link":
				if attr(n, "itemprop") == "name" && meta.Author == "" {
					meta.Author = attr(n, "content")
				}
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					docTitle = n.FirstChild.Data
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = strings.TrimSpace(strings.TrimSuffix(docTitle, " - YouTube"))
	}
	return meta
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// playerResponse is the subset of ytInitialPlayerResponse we read.
type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		VideoID          string `json:"videoId"`
		Title            string `json:"title"`
		Author           string `json:"author"`
		ShortDescription string `json:"shortDescription"`
		LengthSeconds    string `json:"lengthSeconds"`
	} `json:"videoDetails"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

func (p *playerResponse) unavailable() bool {
	switch p.PlayabilityStatus.Status {
	case "ERROR", "LOGIN_REQUIRED", "UNPLAYABLE":
		return p.VideoDetails.VideoID == ""
	}
	return false
}

func (p *playerResponse) lengthSeconds() int {
	n, _ := strconv.Atoi(p.VideoDetails.LengthSeconds)
	return n
}

// parsePlayerResponse decodes the JSON object assigned to
// ytInitialPlayerResponse. It returns nil when the page has none.
func parsePlayerResponse(page string) *playerResponse {
	var pr playerResponse
	if !decodeAfter(page, "ytInitialPlayerResponse", '{', &pr) {
		return nil
	}
	return &pr
}

// parseCaptionTracks finds the caption track list directly. Rendered pages
// sometimes carry it outside ytInitialPlayerResponse.
func parseCaptionTracks(page string) []captionTrack {
	var tracks []captionTrack
	if !decodeAfter(page, `"captionTracks":`, '[', &tracks) {
		return nil
	}
	return tracks
}

// decodeAfter JSON-decodes the first value starting with open that closely
// follows an occurrence of marker in page.
func decodeAfter(page, marker string, open byte, v any) bool {
	for offset := 0; offset < len(page); {
		idx := strings.Index(page[offset:], marker)
		if idx == -1 {
			return false
		}
		rest := page[offset+idx+len(marker):]
		offset += idx + len(marker)

		start := strings.IndexByte(rest, open)
		if start == -1 || start > 16 {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(rest[start:]))
		if dec.Decode(v) == nil {
			return true
		}
	}
	return false
}
