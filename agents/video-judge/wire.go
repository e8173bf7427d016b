package videojudge

import (
	"context"
	"fmt"

	"video-judge/shared/ai"
	"video-judge/shared/config"
	"video-judge/shared/pipeline"
	"video-judge/shared/rubric"
	"video-judge/shared/youtube"

	"go.uber.org/zap"
)

// NewPipeline wires the fetcher and the configured evaluator into a pipeline.
// The Data API client is only built when credentials are configured.
func NewPipeline(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*pipeline.Pipeline, error) {
	var opts []youtube.FetcherOption
	if cfg.YouTube.UsesDataAPI() {
		client, err := youtube.NewClient(ctx, cfg.YouTube, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube client: %w", err)
		}
		if err := client.RefreshToken(); err != nil {
			logger.Warnw("YouTube token refresh failed", "error", err)
		}
		opts = append(opts, youtube.WithMetadataClient(client))
	}
	fetcher := youtube.NewFetcher(cfg.YouTube, logger, opts...)

	evaluator, err := ai.NewEvaluator(ctx, cfg, rubric.SystemPrompt(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}

	return pipeline.New(fetcher, evaluator, cfg.Rubric.Categories, cfg.Rubric.FocusQuery, logger), nil
}
