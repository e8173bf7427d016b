package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"video-judge/internal/models"
	"video-judge/shared/logging"
	"video-judge/shared/rubric"
	"video-judge/shared/youtube"

	"go.uber.org/zap"
)

// ContentFetcher resolves a video URL to its title, author and transcript.
type ContentFetcher interface {
	Fetch(ctx context.Context, videoURL string) (*models.Content, error)
}

// Evaluator is the generation oracle.
type Evaluator interface {
	Evaluate(ctx context.Context, prompt string) (string, error)
}

// Result is everything one run produced. Skipped lists the anchored
// sections the parser had to drop.
type Result struct {
	Content   *models.Content
	Scorecard *models.Scorecard
	RawText   string
	Skipped   []error
}

// Pipeline runs fetch, build, evaluate, parse and aggregate in sequence.
// It keeps no state between runs, so one Pipeline may serve many callers.
type Pipeline struct {
	fetcher      ContentFetcher
	evaluator    Evaluator
	categories   []models.CategorySpec
	builder      *rubric.Builder
	parser       *rubric.Parser
	defaultFocus string
	logger       *zap.SugaredLogger
}

func New(fetcher ContentFetcher, evaluator Evaluator, categories []models.CategorySpec, defaultFocus string, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		fetcher:      fetcher,
		evaluator:    evaluator,
		categories:   append([]models.CategorySpec(nil), categories...),
		builder:      rubric.NewBuilder(categories),
		parser:       rubric.NewParser(categories),
		defaultFocus: defaultFocus,
		logger:       logging.OrNop(logger),
	}
}

// Run evaluates one video. Any fetch or generation failure aborts the run;
// a response with no readable categories returns *rubric.NoScoresError with
// the raw text attached.
func (p *Pipeline) Run(ctx context.Context, videoURL, focusQuery string) (*Result, error) {
	content, err := p.fetcher.Fetch(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	return p.Evaluate(ctx, content, focusQuery)
}

// Evaluate scores content that was already fetched.
func (p *Pipeline) Evaluate(ctx context.Context, content *models.Content, focusQuery string) (*Result, error) {
	start := time.Now()
	if content == nil || strings.TrimSpace(content.Transcript) == "" {
		videoID := ""
		if content != nil {
			videoID = content.VideoID
		}
		return nil, &youtube.FetchError{VideoID: videoID, Err: youtube.ErrNoTranscript}
	}
	if strings.TrimSpace(focusQuery) == "" {
		focusQuery = p.defaultFocus
	}

	req := models.NewEvaluationRequest(content, focusQuery, p.categories)
	prompt := p.builder.Build(req)

	raw, err := p.evaluator.Evaluate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	scores, skipped := p.parser.ParseDetailed(raw)
	for _, s := range skipped {
		p.logger.Debugw("Skipped category", "video_id", content.VideoID, "reason", s)
	}

	card, err := rubric.Aggregate(scores)
	if err != nil {
		var noScores *rubric.NoScoresError
		if errors.As(err, &noScores) {
			noScores.RawText = raw
		}
		p.logger.Warnw("No scores parsed from evaluation", "video_id", content.VideoID, "response_chars", len(raw))
		return nil, err
	}

	for _, s := range scores {
		if s.OutOfRange() {
			p.logger.Warnw("Score outside category range", "video_id", content.VideoID, "category", s.Name, "score", s.Score, "max", s.MaxScore)
		}
	}

	p.logger.Infow("Evaluation complete",
		"video_id", content.VideoID,
		"title", content.Title,
		"categories", card.Len(),
		"skipped", len(skipped),
		"final_percentage", card.FinalPercentage(),
		"grade", card.Grade(),
		"duration", time.Since(start),
	)

	return &Result{
		Content:   content,
		Scorecard: card,
		RawText:   raw,
		Skipped:   skipped,
	}, nil
}
