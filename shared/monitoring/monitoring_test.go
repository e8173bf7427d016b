package monitoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestMonitorHealth(t *testing.T) {
	m := NewMonitor(nil)
	if !m.IsHealthy() {
		t.Error("new monitor should be healthy")
	}

	m.RecordCriticalFailure(errors.New("smtp down"), time.Second)
	if m.IsHealthy() {
		t.Error("monitor should be unhealthy after critical failure")
	}

	m.RecordPartialFailure(errors.New("one video failed"), time.Second)
	if m.IsHealthy() {
		t.Error("partial failure must not change health")
	}

	m.RecordSuccess("3 evaluated", time.Second)
	if !m.IsHealthy() {
		t.Error("monitor should be healthy after success")
	}
	if s := m.Status(); s.LastSummary != "3 evaluated" {
		t.Errorf("LastSummary = %q", s.LastSummary)
	}
}

func TestMonitorConcurrentEvaluations(t *testing.T) {
	m := NewMonitor(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%5 == 0 {
				err = errors.New("failed")
			}
			m.RecordEvaluation(err)
		}(i)
	}
	wg.Wait()

	s := m.Status()
	if s.Evaluations != 50 || s.Failures != 10 {
		t.Errorf("Status = %+v, want 50 evaluations and 10 failures", s)
	}
}

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMonitor(nil)
	router := NewHealthServer(m, "", nil).Handler()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "OK") {
		t.Errorf("/health = %d %q", rec.Code, rec.Body.String())
	}

	m.RecordCriticalFailure(errors.New("boom"), 0)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/health after failure = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	var s Status
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if s.Healthy || s.LastSummary != "boom" {
		t.Errorf("status = %+v", s)
	}
}
