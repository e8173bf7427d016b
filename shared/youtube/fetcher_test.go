package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"video-judge/shared/config"
	"video-judge/shared/logging"
)

const testVideoID = "dQw4w9WgXcQ"

func watchPage(baseURL string, withCaptions bool) string {
	captions := ""
	if withCaptions {
		captions = fmt.Sprintf(`,"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[`+
			`{"baseUrl":"%[1]s/api/timedtext?v=%[2]s&lang=de","languageCode":"de"},`+
			`{"baseUrl":"%[1]s/api/timedtext?v=%[2]s&lang=en&kind=asr","languageCode":"en","kind":"asr"},`+
			`{"baseUrl":"%[1]s/api/timedtext?v=%[2]s&lang=en","languageCode":"en"}]}}`, baseURL, testVideoID)
	}

	return `<!DOCTYPE html><html><head>
<title>Agent Arena Demo - YouTube</title>
<meta property="og:title" content="Agent Arena Demo">
<meta property="og:description" content="Our hackathon submission.">
</head><body>
<span itemprop="author" itemscope itemtype="http://schema.org/Person"><link itemprop="name" content="Team Orbit"></span>
<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},` +
		`"videoDetails":{"videoId":"` + testVideoID + `","title":"Agent Arena Demo","author":"Team Orbit","lengthSeconds":"185"}` +
		captions + `};var meta = {};</script>
</body></html>`
}

const timedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.0" dur="2.1">Hi, we&amp;#39;re Team Orbit.</text>
<text start="2.1" dur="3.0">We integrated FXN
for payments.</text>
<text start="5.1" dur="1.0"></text>
</transcript>`

func newTestServer(t *testing.T, page func(baseURL string) string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			if r.URL.Query().Get("v") != testVideoID {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, page(srv.URL))
		case "/api/timedtext":
			if r.URL.Query().Get("lang") != "en" || r.URL.Query().Get("kind") != "" {
				http.Error(w, "wrong track", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, timedText)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFetcher(srv *httptest.Server) *Fetcher {
	cfg := config.YouTubeConfig{Language: "en", WatchURL: srv.URL + "/watch"}
	return NewFetcher(cfg, logging.Nop(), WithHTTPClient(srv.Client()))
}

func TestFetch(t *testing.T) {
	srv := newTestServer(t, func(base string) string { return watchPage(base, true) })
	f := newTestFetcher(srv)

	content, err := f.Fetch(context.Background(), "https://youtu.be/"+testVideoID)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if content.VideoID != testVideoID {
		t.Errorf("VideoID = %s", content.VideoID)
	}
	if content.Title != "Agent Arena Demo" {
		t.Errorf("Title = %q", content.Title)
	}
	if content.Author != "Team Orbit" {
		t.Errorf("Author = %q", content.Author)
	}
	if content.Description != "Our hackathon submission." {
		t.Errorf("Description = %q", content.Description)
	}
	if content.DurationSeconds != 185 {
		t.Errorf("DurationSeconds = %d, want 185", content.DurationSeconds)
	}
	want := "Hi, we're Team Orbit. We integrated FXN for payments."
	if content.Transcript != want {
		t.Errorf("Transcript = %q, want %q", content.Transcript, want)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		page    func(base string) string
		wantErr error
	}{
		{
			name:    "Invalid URL",
			url:     "https://example.com/about",
			page:    func(base string) string { return watchPage(base, true) },
			wantErr: ErrInvalidURL,
		},
		{
			name:    "Unknown video",
			url:     "https://www.youtube.com/watch?v=AAAAAAAAAAA",
			page:    func(base string) string { return watchPage(base, true) },
			wantErr: ErrNotFound,
		},
		{
			name:    "Unavailable video",
			url:     testVideoID,
			page:    func(string) string { return `<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}};</script>` },
			wantErr: ErrNotFound,
		},
		{
			name:    "No captions",
			url:     testVideoID,
			page:    func(base string) string { return watchPage(base, false) },
			wantErr: ErrNoTranscript,
		},
		{
			name: "Missing metadata",
			url:  testVideoID,
			page: func(string) string {
				return `<html><head></head><body>nothing here</body></html>`
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.page)
			_, err := newTestFetcher(srv).Fetch(context.Background(), tt.url)

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("error = %v, want *FetchError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

type stubLoader struct {
	page string
	err  error
}

func (s stubLoader) Load(ctx context.Context, pageURL string) (string, error) {
	return s.page, s.err
}

func TestFetchLoaderError(t *testing.T) {
	f := NewFetcher(config.YouTubeConfig{}, nil, WithPageLoader(stubLoader{err: errors.New("browser crashed")}))

	_, err := f.Fetch(context.Background(), testVideoID)
	if err == nil || !strings.Contains(err.Error(), "browser crashed") {
		t.Fatalf("error = %v", err)
	}
}

type stubMetadata struct {
	meta *Metadata
	err  error
}

func (s stubMetadata) VideoMetadata(ctx context.Context, videoID string) (*Metadata, error) {
	return s.meta, s.err
}

func TestFetchPrefersDataAPIMetadata(t *testing.T) {
	srv := newTestServer(t, func(base string) string { return watchPage(base, true) })
	f := newTestFetcher(srv)
	f.metadata = stubMetadata{meta: &Metadata{Title: "API Title", Author: "API Channel", DurationSeconds: 60}}

	content, err := f.Fetch(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if content.Title != "API Title" || content.Author != "API Channel" || content.DurationSeconds != 60 {
		t.Errorf("content = %+v", content)
	}

	f.metadata = stubMetadata{err: ErrNotFound}
	if _, err := f.Fetch(context.Background(), testVideoID); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
