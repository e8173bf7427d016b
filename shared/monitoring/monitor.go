package monitoring

import (
	"fmt"
	"sync"
	"time"

	"video-judge/shared/logging"

	"go.uber.org/zap"
)

// Monitor tracks scheduled run health and evaluation counters. It is shared
// by the scheduler and the HTTP API, so every method is safe for concurrent
// use.
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	evaluations    int
	failures       int
	logger         *zap.SugaredLogger
}

func NewMonitor(logger *zap.SugaredLogger) *Monitor {
	return &Monitor{logger: logging.OrNop(logger)}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.mu.Unlock()

	m.logger.Infow("Run completed successfully", "summary", summary, "duration", duration)
}

// RecordPartialFailure logs without changing health status.
func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	m.logger.Warnw("Partial failure", "error", err, "duration", duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.mu.Unlock()

	m.logger.Errorw("Critical failure", "error", err, "duration", duration)
}

// RecordEvaluation counts one pipeline run, from any entry point.
func (m *Monitor) RecordEvaluation(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evaluations++
	if err != nil {
		m.failures++
	}
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true
	}
	return m.lastRunSuccess
}

// Status is the JSON shape served on /status.
type Status struct {
	Healthy     bool      `json:"healthy"`
	LastRun     time.Time `json:"last_run,omitempty"`
	LastSummary string    `json:"last_summary,omitempty"`
	Evaluations int       `json:"evaluations"`
	Failures    int       `json:"failures"`
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Status{
		Healthy:     m.lastRunTime.IsZero() || m.lastRunSuccess,
		LastRun:     m.lastRunTime,
		LastSummary: m.lastSummary,
		Evaluations: m.evaluations,
		Failures:    m.failures,
	}
}

func (m *Monitor) GetStatusSummary() string {
	s := m.Status()

	if s.LastRun.IsZero() {
		return fmt.Sprintf("No scheduled runs yet (%d evaluations, %d failed)", s.Evaluations, s.Failures)
	}
	if s.Healthy {
		return fmt.Sprintf("Last run: %s (%d evaluations, %d failed)", s.LastRun.Format("Jan 2 15:04"), s.Evaluations, s.Failures)
	}
	return fmt.Sprintf("Last run failed: %s (%d evaluations, %d failed)", s.LastRun.Format("Jan 2 15:04"), s.Evaluations, s.Failures)
}
