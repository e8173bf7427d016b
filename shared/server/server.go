package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"video-judge/shared/logging"
	"video-judge/shared/monitoring"
	"video-judge/shared/pipeline"
	"video-judge/shared/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxRequestBytes = 64 << 10

// Runner evaluates one video URL. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, videoURL, focusQuery string) (*pipeline.Result, error)
}

type Server struct {
	runner  Runner
	monitor *monitoring.Monitor
	tracker *storage.Tracker
	focus   string
	logger  *zap.SugaredLogger
	now     func() time.Time
}

type Option func(*Server)

// WithTracker records every successful evaluation and exposes them on
// GET /api/evaluations.
func WithTracker(t *storage.Tracker) Option {
	return func(s *Server) { s.tracker = t }
}

// WithDefaultFocus sets the focus note shown on HTML reports when a request
// gives none.
func WithDefaultFocus(focus string) Option {
	return func(s *Server) { s.focus = focus }
}

func New(runner Runner, monitor *monitoring.Monitor, logger *zap.SugaredLogger, opts ...Option) *Server {
	logger = logging.OrNop(logger)
	if monitor == nil {
		monitor = monitoring.NewMonitor(logger)
	}
	s := &Server{
		runner:  runner,
		monitor: monitor,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin router with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	monitoring.RegisterRoutes(r, s.monitor)
	r.GET("/report", s.handleReport)

	api := r.Group("/api")
	api.POST("/evaluate", s.handleEvaluate)
	api.GET("/evaluations", s.handleEvaluations)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	}
}

func requestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugw("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
