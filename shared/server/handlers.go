package server

import (
	"errors"
	"net/http"
	"strings"

	"video-judge/internal/models"
	"video-judge/shared/ai"
	"video-judge/shared/report"
	"video-judge/shared/rubric"
	"video-judge/shared/storage"
	"video-judge/shared/youtube"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EvaluateRequest is the JSON body for POST /api/evaluate.
type EvaluateRequest struct {
	URL        string `json:"url"`
	FocusQuery string `json:"focus_query"`
}

// EvaluateResponse is the JSON response for POST /api/evaluate.
type EvaluateResponse struct {
	RunID     string            `json:"run_id"`
	Video     *models.Content   `json:"video"`
	Scorecard *models.Scorecard `json:"scorecard"`
	Skipped   []string          `json:"skipped,omitempty"`
}

type errorResponse struct {
	RunID   string `json:"run_id"`
	Error   string `json:"error"`
	RawText string `json:"raw_text,omitempty"`
}

func (s *Server) handleEvaluate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)
	runID := uuid.NewString()

	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{RunID: runID, Error: "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{RunID: runID, Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{RunID: runID, Error: "missing url"})
		return
	}

	result, err := s.evaluate(c, runID, req.URL, req.FocusQuery)
	if err != nil {
		status, body := errorStatus(err)
		body.RunID = runID
		c.JSON(status, body)
		return
	}

	resp := EvaluateResponse{
		RunID:     runID,
		Video:     result.content,
		Scorecard: result.card,
	}
	for _, skipped := range result.skipped {
		resp.Skipped = append(resp.Skipped, skipped.Error())
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleReport(c *gin.Context) {
	videoURL := strings.TrimSpace(c.Query("url"))
	if videoURL == "" {
		c.String(http.StatusBadRequest, "missing url query parameter")
		return
	}
	focus := c.Query("focus")

	result, err := s.evaluate(c, uuid.NewString(), videoURL, focus)
	if err != nil {
		status, body := errorStatus(err)
		c.String(status, body.Error)
		return
	}

	if focus == "" {
		focus = s.focus
	}
	html, err := report.RenderHTML(report.Single(result.content, result.card, focus, s.now()))
	if err != nil {
		s.logger.Errorw("Failed to render report", "error", err)
		c.String(http.StatusInternalServerError, "failed to render report")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) handleEvaluations(c *gin.Context) {
	if s.tracker == nil {
		c.JSON(http.StatusOK, gin.H{"evaluations": []storage.Evaluation{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": s.tracker.List()})
}

type evaluation struct {
	content *models.Content
	card    *models.Scorecard
	skipped []error
}

func (s *Server) evaluate(c *gin.Context, runID, videoURL, focus string) (*evaluation, error) {
	res, err := s.runner.Run(c.Request.Context(), videoURL, focus)
	s.monitor.RecordEvaluation(err)
	if err != nil {
		s.logger.Warnw("Evaluation failed", "run_id", runID, "url", videoURL, "error", err)
		return nil, err
	}

	if s.tracker != nil {
		rec := storage.Evaluation{
			VideoID:    res.Content.VideoID,
			Title:      res.Content.Title,
			Percentage: res.Scorecard.FinalPercentage(),
			Grade:      res.Scorecard.Grade(),
		}
		if err := s.tracker.Record(rec); err != nil {
			s.logger.Warnw("Failed to record evaluation", "run_id", runID, "error", err)
		}
	}

	return &evaluation{content: res.Content, card: res.Scorecard, skipped: res.Skipped}, nil
}

// errorStatus maps a pipeline failure to an HTTP status and body.
func errorStatus(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error()}

	var noScores *rubric.NoScoresError
	var genErr *ai.GenerationError
	switch {
	case errors.Is(err, youtube.ErrInvalidURL):
		return http.StatusBadRequest, body
	case errors.Is(err, youtube.ErrNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, youtube.ErrNoTranscript):
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &noScores):
		body.RawText = noScores.RawText
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &genErr), errors.Is(err, ai.ErrEmptyResponse):
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, body
	}
}
