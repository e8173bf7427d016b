package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"video-judge/internal/models"
	"video-judge/shared/config"
	"video-judge/shared/logging"

	"go.uber.org/zap"
)

// metadataSource is satisfied by *Client.
type metadataSource interface {
	VideoMetadata(ctx context.Context, videoID string) (*Metadata, error)
}

// Fetcher assembles title, author and transcript for a video. Missing
// metadata or transcript is an error; partial content is never returned.
type Fetcher struct {
	pages    PageLoader
	captions *HTTPLoader
	metadata metadataSource
	language string
	watchURL string
	logger   *zap.SugaredLogger
}

type FetcherOption func(*Fetcher)

// WithPageLoader replaces the loader used for the watch page.
func WithPageLoader(l PageLoader) FetcherOption {
	return func(f *Fetcher) { f.pages = l }
}

// WithMetadataClient reads metadata from the Data API instead of the page.
func WithMetadataClient(c *Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.metadata = c
		}
	}
}

// WithHTTPClient sets the client used for plain page and caption requests.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.captions = NewHTTPLoader(c, f.language)
		if _, ok := f.pages.(*HTTPLoader); ok || f.pages == nil {
			f.pages = f.captions
		}
	}
}

func NewFetcher(cfg config.YouTubeConfig, logger *zap.SugaredLogger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		language: cfg.Language,
		watchURL: cfg.WatchURL,
		logger:   logging.OrNop(logger),
	}
	f.captions = NewHTTPLoader(nil, f.language)
	f.pages = f.captions
	if cfg.Render {
		f.pages = NewRodLoader(f.logger)
	}

	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, videoURL string) (*models.Content, error) {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	start := time.Now()
	pageURL := WatchURL(f.watchURL, videoID)

	page, err := f.pages.Load(ctx, pageURL)
	if err != nil {
		return nil, &FetchError{VideoID: videoID, Err: err}
	}

	player := parsePlayerResponse(page)
	if player != nil && player.unavailable() {
		f.logger.Warnw("Video unavailable", "video_id", videoID, "reason", player.PlayabilityStatus.Reason)
		return nil, &FetchError{VideoID: videoID, Err: ErrNotFound}
	}

	content, err := f.contentMetadata(ctx, videoID, page, player)
	if err != nil {
		return nil, &FetchError{VideoID: videoID, Err: err}
	}
	content.URL = pageURL

	transcript, err := f.transcript(ctx, page, player)
	if err != nil {
		return nil, &FetchError{VideoID: videoID, Err: err}
	}
	content.Transcript = transcript

	f.logger.Infow("Fetched video content",
		"video_id", videoID,
		"title", content.Title,
		"transcript_chars", len(transcript),
		"duration", time.Since(start),
	)

	return content, nil
}

func (f *Fetcher) contentMetadata(ctx context.Context, videoID, page string, player *playerResponse) (*models.Content, error) {
	content := &models.Content{VideoID: videoID}

	if f.metadata != nil {
		meta, err := f.metadata.VideoMetadata(ctx, videoID)
		if err != nil {
			return nil, err
		}
		content.Title = meta.Title
		content.Author = meta.Author
		content.Description = meta.Description
		content.DurationSeconds = meta.DurationSeconds
	} else {
		meta := parsePageMetadata(page)
		content.Title = meta.Title
		content.Author = meta.Author
		content.Description = meta.Description
	}

	if player != nil {
		details := player.VideoDetails
		if content.Title == "" {
			content.Title = details.Title
		}
		if content.Author == "" {
			content.Author = details.Author
		}
		if content.Description == "" {
			content.Description = details.ShortDescription
		}
		if content.DurationSeconds == 0 {
			content.DurationSeconds = player.lengthSeconds()
		}
	}

	content.Title = strings.TrimSpace(content.Title)
	content.Author = strings.TrimSpace(content.Author)
	if content.Title == "" || content.Author == "" {
		return nil, fmt.Errorf("%w: title or author missing from video page", ErrNotFound)
	}

	return content, nil
}

func (f *Fetcher) transcript(ctx context.Context, page string, player *playerResponse) (string, error) {
	var tracks []captionTrack
	if player != nil {
		tracks = player.Captions.Renderer.CaptionTracks
	}
	if len(tracks) == 0 {
		tracks = parseCaptionTracks(page)
	}

	track, ok := pickTrack(tracks, f.language)
	if !ok || track.BaseURL == "" {
		return "", ErrNoTranscript
	}

	text, err := f.captions.fetchTranscript(ctx, track)
	if err != nil {
		if !errors.Is(err, ErrNoTranscript) {
			f.logger.Warnw("Caption download failed", "language", track.LanguageCode, "error", err)
		}
		return "", err
	}

	return text, nil
}
