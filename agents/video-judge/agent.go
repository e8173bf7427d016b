package videojudge

import (
	"context"
	"fmt"
	"time"

	"video-judge/internal/models"
	"video-judge/shared/config"
	"video-judge/shared/email"
	"video-judge/shared/logging"
	"video-judge/shared/monitoring"
	"video-judge/shared/pipeline"
	"video-judge/shared/scheduler"
	"video-judge/shared/storage"
	"video-judge/shared/youtube"

	"go.uber.org/zap"
)

// JudgeMetrics summarizes one watchlist run.
type JudgeMetrics struct {
	Watched   int  `json:"watched"`
	Skipped   int  `json:"skipped"`
	Evaluated int  `json:"evaluated"`
	Failed    int  `json:"failed"`
	EmailSent bool `json:"email_sent"`
}

// GetSummary implements the scheduler.Metrics interface
func (m JudgeMetrics) GetSummary() string {
	summary := fmt.Sprintf("%d watched, %d evaluated, %d failed, %d skipped", m.Watched, m.Evaluated, m.Failed, m.Skipped)
	if m.EmailSent {
		return summary + ", digest sent"
	}
	return summary + ", no digest"
}

// Runner evaluates one video URL. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, videoURL, focusQuery string) (*pipeline.Result, error)
}

type ReportSender interface {
	SendReport(r *models.EmailReport) error
}

// Agent evaluates the configured watchlist and mails a scorecard digest.
// It implements scheduler.Agent.
type Agent struct {
	config  *config.Config
	runner  Runner
	sender  ReportSender
	tracker *storage.Tracker
	monitor *monitoring.Monitor
	logger  *zap.SugaredLogger
	pause   time.Duration
	now     func() time.Time
}

type Option func(*Agent)

func WithSender(s ReportSender) Option {
	return func(a *Agent) { a.sender = s }
}

func WithTracker(t *storage.Tracker) Option {
	return func(a *Agent) { a.tracker = t }
}

// WithMonitor counts every evaluation on m as well.
func WithMonitor(m *monitoring.Monitor) Option {
	return func(a *Agent) { a.monitor = m }
}

// WithPause sets the delay between consecutive evaluations.
func WithPause(d time.Duration) Option {
	return func(a *Agent) { a.pause = d }
}

func NewAgent(cfg *config.Config, runner Runner, logger *zap.SugaredLogger, opts ...Option) *Agent {
	a := &Agent{
		config: cfg,
		runner: runner,
		logger: logging.OrNop(logger),
		pause:  2 * time.Second,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Name() string {
	return "Video Judge"
}

func (a *Agent) Initialize() error {
	a.logger.Infow("Initializing agent", "agent", a.Name())

	if err := a.config.ValidateWatch(); err != nil {
		return fmt.Errorf("invalid watch configuration: %w", err)
	}

	if a.sender == nil {
		a.sender = email.NewSender(&a.config.Email)
		a.logger.Debugw("Email sender initialized", "to", a.config.Email.ToEmail)
	}

	if a.tracker == nil {
		tracker, err := storage.NewTracker(a.config.Tracker.DataDir, time.Duration(a.config.Tracker.MaxAgeHours)*time.Hour)
		if err != nil {
			return fmt.Errorf("failed to create tracker: %w", err)
		}
		a.tracker = tracker
		a.logger.Infow("Tracker initialized", "tracked", tracker.Count())
	}

	return nil
}

func (a *Agent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	metrics := JudgeMetrics{Watched: len(a.config.Watchlist)}

	var pending []string
	for _, url := range a.config.Watchlist {
		id, err := youtube.ExtractVideoID(url)
		if err != nil {
			metrics.Failed++
			a.partialFailure(events, fmt.Errorf("watchlist entry %q: %w", url, err), startTime)
			continue
		}
		if a.tracker.IsEvaluated(id) {
			metrics.Skipped++
			continue
		}
		pending = append(pending, url)
	}

	a.logger.Infow("Watchlist resolved", "watched", metrics.Watched, "pending", len(pending), "skipped", metrics.Skipped)

	var entries []*models.DigestEntry
	var runFailures int
	for i, url := range pending {
		if i > 0 && a.pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.pause):
			}
		}

		a.logger.Infow("Evaluating video", "n", i+1, "of", len(pending), "url", url)
		result, err := a.runner.Run(ctx, url, a.config.Rubric.FocusQuery)
		if a.monitor != nil {
			a.monitor.RecordEvaluation(err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.Failed++
			runFailures++
			a.partialFailure(events, fmt.Errorf("evaluate %s: %w", url, err), startTime)
			if runFailures > len(pending)/2 {
				err := fmt.Errorf("too many evaluation failures (%d/%d), stopping", runFailures, i+1)
				if events != nil && events.OnCriticalFailure != nil {
					events.OnCriticalFailure(err, time.Since(startTime))
				}
				return err
			}
			continue
		}

		entries = append(entries, &models.DigestEntry{Content: result.Content, Scorecard: result.Scorecard})
		metrics.Evaluated++

		rec := storage.Evaluation{
			VideoID:    result.Content.VideoID,
			Title:      result.Content.Title,
			Percentage: result.Scorecard.FinalPercentage(),
			Grade:      result.Scorecard.Grade(),
		}
		if err := a.tracker.Record(rec); err != nil {
			a.logger.Warnw("Failed to record evaluation", "video_id", rec.VideoID, "error", err)
		}
	}

	digest := &models.EmailReport{
		Date:      a.now(),
		Entries:   entries,
		Total:     len(entries),
		Failed:    metrics.Failed,
		FocusNote: a.config.Rubric.FocusQuery,
	}
	if len(entries) > 0 || metrics.Failed > 0 {
		if err := a.sender.SendReport(digest); err != nil {
			return fmt.Errorf("failed to send digest: %w", err)
		}
		metrics.EmailSent = true
		a.logger.Infow("Digest sent", "entries", len(entries), "failed", metrics.Failed)
	} else {
		a.logger.Infow("Nothing new to report, skipping email")
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}
	return nil
}

func (a *Agent) partialFailure(events *scheduler.AgentEvents, err error, start time.Time) {
	a.logger.Warnw("Watchlist entry failed", "error", err)
	if events != nil && events.OnPartialFailure != nil {
		events.OnPartialFailure(err, time.Since(start))
	}
}
