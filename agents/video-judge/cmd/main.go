package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	videojudge "video-judge/agents/video-judge"
	"video-judge/shared/config"
	"video-judge/shared/logging"
	"video-judge/shared/monitoring"
	"video-judge/shared/report"
	"video-judge/shared/rubric"
	"video-judge/shared/scheduler"
	"video-judge/shared/server"
	"video-judge/shared/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const usage = `usage:
  video-judge evaluate <url> [focus query]   evaluate one video and print the scorecard
  video-judge serve                          start the HTTP API
  video-judge --once                         evaluate the watchlist once and mail the digest
  video-judge                                run the watchlist on the configured schedule`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	args := os.Args[1:]
	mode := ""
	if len(args) > 0 {
		mode = args[0]
	}

	switch mode {
	case "evaluate":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(evaluate(ctx, cfg, logger, args[1], strings.Join(args[2:], " ")))
	case "serve":
		if err := serve(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatalw("Server failed", "error", err)
		}
	case "--once", "":
		if err := watch(ctx, cfg, logger, mode == "--once"); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatalw("Watchlist run failed", "error", err)
		}
	case "-h", "--help", "help":
		fmt.Println(usage)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func evaluate(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger, url, focus string) int {
	p, err := videojudge.NewPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Errorw("Failed to build pipeline", "error", err)
		return 1
	}

	result, err := p.Run(ctx, url, focus)
	if err != nil {
		var noScores *rubric.NoScoresError
		if errors.As(err, &noScores) {
			fmt.Println("Could not interpret the evaluation. Raw response:")
			fmt.Println()
			fmt.Println(noScores.RawText)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Evaluation failed: %v\n", err)
		return 1
	}

	fmt.Print(report.RenderText(result.Content, result.Scorecard))
	return 0
}

// serve runs the HTTP API. When a watchlist is configured the scheduler runs
// alongside it and both share one monitor.
func serve(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) error {
	p, err := videojudge.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	tracker, err := storage.NewTracker(cfg.Tracker.DataDir, time.Duration(cfg.Tracker.MaxAgeHours)*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to create tracker: %w", err)
	}
	monitor := monitoring.NewMonitor(logger)

	g, ctx := errgroup.WithContext(ctx)

	srv := server.New(p, monitor, logger,
		server.WithTracker(tracker),
		server.WithDefaultFocus(cfg.Rubric.FocusQuery),
	)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	})

	if err := cfg.ValidateWatch(); err == nil {
		agent := videojudge.NewAgent(cfg, p, logger,
			videojudge.WithTracker(tracker),
			videojudge.WithMonitor(monitor),
		)
		s := scheduler.New(cfg, agent, monitor, logger)
		g.Go(func() error {
			return s.Start(ctx)
		})
	} else {
		logger.Infow("Watchlist scheduler disabled", "reason", err)
	}

	return g.Wait()
}

func watch(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger, once bool) error {
	p, err := videojudge.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	monitor := monitoring.NewMonitor(logger)
	agent := videojudge.NewAgent(cfg, p, logger, videojudge.WithMonitor(monitor))
	s := scheduler.New(cfg, agent, monitor, logger)

	if once {
		logger.Infow("Running once")
		if err := agent.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize agent: %w", err)
		}
		return s.RunOnce(ctx)
	}

	logger.Infow("Starting scheduler")
	return s.Start(ctx)
}
