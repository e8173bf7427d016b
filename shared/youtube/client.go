package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"video-judge/shared/config"
	"video-judge/shared/logging"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Metadata is what the Data API reports for one video.
type Metadata struct {
	Title           string
	Author          string
	Description     string
	DurationSeconds int
}

// Client reads video metadata from the YouTube Data API, authenticated with
// either an API key or a saved OAuth token.
type Client struct {
	service     *youtube.Service
	oauthConfig *oauth2.Config
	token       *oauth2.Token
	tokenFile   string
	logger      *zap.SugaredLogger
}

func NewClient(ctx context.Context, cfg config.YouTubeConfig, logger *zap.SugaredLogger) (*Client, error) {
	c := &Client{tokenFile: cfg.TokenFile, logger: logging.OrNop(logger)}

	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		c.oauthConfig = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}

		token, err := getToken(c.oauthConfig, cfg.TokenFile, c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to get OAuth token: %w", err)
		}
		c.token = token

		ts := &tokenSaver{config: c.oauthConfig, token: token, tokenFile: cfg.TokenFile, logger: c.logger}
		opts = append(opts, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	c.service = service

	return c, nil
}

// VideoMetadata looks up a single video. Unknown IDs yield ErrNotFound.
func (c *Client) VideoMetadata(ctx context.Context, videoID string) (*Metadata, error) {
	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get video details: %w", err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, ErrNotFound
	}

	item := resp.Items[0]
	meta := &Metadata{
		Title:       item.Snippet.Title,
		Author:      item.Snippet.ChannelTitle,
		Description: item.Snippet.Description,
	}
	if item.ContentDetails != nil {
		meta.DurationSeconds = parseDurationSeconds(item.ContentDetails.Duration)
	}

	return meta, nil
}

// RefreshToken refreshes an OAuth token ahead of a scheduled run. It is a
// no-op for API key clients.
func (c *Client) RefreshToken() error {
	if c.oauthConfig == nil {
		return nil
	}

	newToken, err := c.oauthConfig.TokenSource(context.Background(), c.token).Token()
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	if newToken.AccessToken != c.token.AccessToken {
		c.logger.Infow("YouTube token refreshed", "expires", newToken.Expiry)
		c.token = newToken
		if err := saveToken(c.tokenFile, newToken); err != nil {
			return fmt.Errorf("failed to save refreshed token: %w", err)
		}
	} else {
		c.logger.Debugw("YouTube token still valid", "expires", c.token.Expiry)
	}

	return nil
}

var isoDurationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// parseDurationSeconds reads ISO 8601 durations such as PT2H15M30S.
func parseDurationSeconds(duration string) int {
	m := isoDurationPattern.FindStringSubmatch(duration)
	if m == nil {
		return 0
	}

	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		if n, err := strconv.Atoi(m[i+1]); err == nil {
			total += n * unit
		}
	}
	return total
}
