package models

import "time"

// Content is what a fetcher hands to the rubric builder.
type Content struct {
	VideoID     string `json:"video_id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	// DurationSeconds is 0 when the source did not report a length.
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Transcript      string `json:"-"`
}

type EvaluationRequest struct {
	Title      string
	Author     string
	Transcript string
	FocusQuery string
	Categories []CategorySpec
}

// NewEvaluationRequest copies the content fields a prompt needs.
func NewEvaluationRequest(content *Content, focusQuery string, categories []CategorySpec) EvaluationRequest {
	return EvaluationRequest{
		Title:      content.Title,
		Author:     content.Author,
		Transcript: content.Transcript,
		FocusQuery: focusQuery,
		Categories: categories,
	}
}

type DigestEntry struct {
	Content   *Content   `json:"video"`
	Scorecard *Scorecard `json:"scorecard"`
}

type EmailReport struct {
	Date      time.Time      `json:"date"`
	Entries   []*DigestEntry `json:"entries"`
	Total     int            `json:"total_evaluated"`
	Failed    int            `json:"failed"`
	FocusNote string         `json:"focus_note,omitempty"`
}
