package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"video-judge/internal/models"
)

//go:embed templates/report.html
var templates embed.FS

var reportTemplate = template.Must(
	template.New("report.html").Funcs(template.FuncMap{
		"stars":    Stars,
		"score":    formatScore,
		"percent":  func(p float64) int { return int(p) },
		"duration": formatDuration,
	}).ParseFS(templates, "templates/report.html"),
)

// RenderHTML renders evaluation cards for every entry in the report.
func RenderHTML(report *models.EmailReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// Single wraps one evaluation as a report.
func Single(content *models.Content, card *models.Scorecard, focus string, now time.Time) *models.EmailReport {
	return &models.EmailReport{
		Date:      now,
		Entries:   []*models.DigestEntry{{Content: content, Scorecard: card}},
		Total:     1,
		FocusNote: focus,
	}
}

// RenderText renders a plain-text scorecard for terminals.
func RenderText(content *models.Content, card *models.Scorecard) string {
	var b strings.Builder

	if content != nil {
		fmt.Fprintf(&b, "Analysis of: %s\n", content.Title)
		fmt.Fprintf(&b, "By: %s\n", content.Author)
		if content.URL != "" {
			fmt.Fprintf(&b, "%s\n", content.URL)
		}
		b.WriteString("\n")
	}

	for _, s := range card.Scores() {
		flag := ""
		if s.OutOfRange() {
			flag = "  (out of range)"
		}
		fmt.Fprintf(&b, "%d. %s  %s/%s  %s%s\n", s.Order, s.Name, formatScore(s.Score), formatScore(s.MaxScore), Stars(s.Score, s.MaxScore), flag)
		for _, ev := range s.SponsorEvidence {
			verdict := "No"
			if ev.Mentioned {
				verdict = "Yes"
			}
			fmt.Fprintf(&b, "   - %s: %s", ev.SponsorName, verdict)
			if ev.Quote != "" {
				fmt.Fprintf(&b, " %q", ev.Quote)
			}
			b.WriteString("\n")
		}
		for _, line := range strings.Split(s.Justification, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			fmt.Fprintf(&b, "   %s\n", line)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Final Score: %d%%  Grade: %s\n", int(card.FinalPercentage()), card.Grade())
	return b.String()
}

// Stars draws filled stars for the whole-number part of score and empty
// stars up to max. Out-of-range scores are drawn clamped.
func Stars(score, max float64) string {
	total := int(max)
	if total <= 0 {
		return ""
	}
	filled := int(math.Max(0, math.Min(score, max)))
	return strings.Repeat("★", filled) + strings.Repeat("☆", total-filled)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
