package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"video-judge/internal/models"
	"video-judge/shared/ai"
	"video-judge/shared/monitoring"
	"video-judge/shared/pipeline"
	"video-judge/shared/rubric"
	"video-judge/shared/storage"
	"video-judge/shared/youtube"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubRunner struct {
	result *pipeline.Result
	err    error
	urls   []string
	focus  []string
}

func (s *stubRunner) Run(ctx context.Context, videoURL, focusQuery string) (*pipeline.Result, error) {
	s.urls = append(s.urls, videoURL)
	s.focus = append(s.focus, focusQuery)
	return s.result, s.err
}

func sampleResult() *pipeline.Result {
	scores := []models.CategoryScore{
		{Order: 1, Name: "Innovation", Score: 4, MaxScore: 5, Justification: "Novel agent market."},
		{Order: 2, Name: "Sponsor Protocol Integration", Score: 2, MaxScore: 5, SponsorEvidence: []models.SponsorEvidence{
			{SponsorName: "FXN", Mentioned: true, Quote: "We integrated FXN for payments"},
		}},
	}
	return &pipeline.Result{
		Content: &models.Content{
			VideoID: "dQw4w9WgXcQ",
			URL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Title:   "Agent Arena",
			Author:  "Team Orbit",
		},
		Scorecard: models.NewScorecard(scores, 60, 'D'),
	}
}

func newRouter(runner Runner, opts ...Option) (http.Handler, *monitoring.Monitor) {
	gin.SetMode(gin.TestMode)
	m := monitoring.NewMonitor(nil)
	return New(runner, m, nil, opts...).Handler(), m
}

func postEvaluate(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestEvaluateSuccess(t *testing.T) {
	runner := &stubRunner{result: sampleResult()}
	tracker, err := storage.NewTracker(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	router, monitor := newRouter(runner, WithTracker(tracker))

	rec := postEvaluate(router, `{"url":"https://youtu.be/dQw4w9WgXcQ","focus_query":"Judge the demo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RunID     string         `json:"run_id"`
		Video     models.Content `json:"video"`
		Scorecard struct {
			Scores          []models.CategoryScore `json:"scores"`
			FinalPercentage float64                `json:"final_percentage"`
			Grade           string                 `json:"grade"`
		} `json:"scorecard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := uuid.Parse(resp.RunID); err != nil {
		t.Errorf("run_id %q is not a UUID", resp.RunID)
	}
	if resp.Video.Title != "Agent Arena" {
		t.Errorf("video title = %q", resp.Video.Title)
	}
	if resp.Scorecard.Grade != "D" || resp.Scorecard.FinalPercentage != 60 || len(resp.Scorecard.Scores) != 2 {
		t.Errorf("scorecard = %+v", resp.Scorecard)
	}
	if got := resp.Scorecard.Scores[1].SponsorEvidence; len(got) != 1 || got[0].Quote == "" {
		t.Errorf("sponsor evidence = %+v", got)
	}

	if runner.focus[0] != "Judge the demo" {
		t.Errorf("focus passed = %q", runner.focus[0])
	}
	if !tracker.IsEvaluated("dQw4w9WgXcQ") {
		t.Error("successful evaluation was not tracked")
	}
	if s := monitor.Status(); s.Evaluations != 1 || s.Failures != 0 {
		t.Errorf("monitor status = %+v", s)
	}
}

func TestEvaluateBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Invalid JSON", `{"url":`},
		{"Missing url", `{"focus_query":"x"}`},
		{"Blank url", `{"url":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{result: sampleResult()}
			router, _ := newRouter(runner)

			rec := postEvaluate(router, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(runner.urls) != 0 {
				t.Error("runner should not be called for a bad request")
			}
		})
	}
}

func TestEvaluateBodyTooLarge(t *testing.T) {
	router, _ := newRouter(&stubRunner{result: sampleResult()})

	body := fmt.Sprintf(`{"url":"https://youtu.be/dQw4w9WgXcQ","focus_query":%q}`, strings.Repeat("x", maxRequestBytes))
	rec := postEvaluate(router, body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestEvaluateErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantRaw    string
	}{
		{"Invalid URL", &youtube.FetchError{Err: youtube.ErrInvalidURL}, http.StatusBadRequest, ""},
		{"Not found", &youtube.FetchError{VideoID: "abc", Err: youtube.ErrNotFound}, http.StatusNotFound, ""},
		{"No transcript", &youtube.FetchError{VideoID: "abc", Err: youtube.ErrNoTranscript}, http.StatusUnprocessableEntity, ""},
		{"Generation failed", &ai.GenerationError{Provider: "gemini", Err: errors.New("quota")}, http.StatusBadGateway, ""},
		{"Empty response", &ai.GenerationError{Provider: "openai", Err: ai.ErrEmptyResponse}, http.StatusBadGateway, ""},
		{"No scores", &rubric.NoScoresError{RawText: "I cannot score this."}, http.StatusUnprocessableEntity, "I cannot score this."},
		{"Unexpected", errors.New("disk full"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, monitor := newRouter(&stubRunner{err: tt.err})

			rec := postEvaluate(router, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == "" || body.RunID == "" {
				t.Errorf("error body = %+v", body)
			}
			if body.RawText != tt.wantRaw {
				t.Errorf("raw_text = %q, want %q", body.RawText, tt.wantRaw)
			}
			if s := monitor.Status(); s.Failures != 1 {
				t.Errorf("failures = %d, want 1", s.Failures)
			}
		})
	}
}

func TestReport(t *testing.T) {
	runner := &stubRunner{result: sampleResult()}
	router, _ := newRouter(runner, WithDefaultFocus("Default focus note"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report?url=https://youtu.be/dQw4w9WgXcQ", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"Agent Arena", "Innovation", "We integrated FXN for payments", "Default focus note"} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing url status = %d, want 400", rec.Code)
	}
}

func TestReportError(t *testing.T) {
	router, _ := newRouter(&stubRunner{err: &youtube.FetchError{VideoID: "abc", Err: youtube.ErrNotFound}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report?url=https://youtu.be/abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestEvaluationsAndHealth(t *testing.T) {
	tracker, err := storage.NewTracker(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	if err := tracker.Record(storage.Evaluation{VideoID: "abc", Grade: "B", Percentage: 80}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	router, _ := newRouter(&stubRunner{}, WithTracker(tracker))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/evaluations", nil))
	var body struct {
		Evaluations []storage.Evaluation `json:"evaluations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Evaluations) != 1 || body.Evaluations[0].Grade != "B" {
		t.Errorf("evaluations = %+v", body.Evaluations)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d", rec.Code)
	}
}
